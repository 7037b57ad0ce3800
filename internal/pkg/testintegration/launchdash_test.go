package testintegration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/dataset"
	"github.com/fredbi/launchdash/internal/pkg/handler"
	"github.com/fredbi/launchdash/internal/pkg/layout"
	"github.com/fredbi/launchdash/internal/pkg/reactive"
	"github.com/fredbi/launchdash/internal/pkg/server"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestLaunchdash(t *testing.T) {
	t.Run("with spacex example", func(t *testing.T) {
		fixtureDir := filepath.Join("..", "..", "..", "examples", "spacex")
		resultDir := t.TempDir()

		t.Run("should load config", func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(fixtureDir, "launchdash.yaml"))
			require.NoError(t, err)
			require.NotNil(t, cfg)

			writeData(t, resultDir, "test_config.json", cfg)

			t.Run("should load dataset", func(t *testing.T) {
				ds, err := dataset.Load(filepath.Join(fixtureDir, cfg.Dataset.File), dataset.WithColumns(cfg.Dataset.Columns))
				require.NoError(t, err)

				writeData(t, resultDir, "test_report.json", ds.Report())

				t.Run("should bind the dashboard", func(t *testing.T) {
					l := layout.Build(cfg, ds)
					rt := reactive.New()
					require.NoError(t, handler.New(cfg, ds).Bind(rt, l))

					ctx, cancel := context.WithCancel(t.Context())
					stopped := make(chan struct{})
					go func() {
						defer close(stopped)
						_ = rt.Run(ctx)
					}()
					t.Cleanup(func() {
						cancel()
						<-stopped
					})

					ts := httptest.NewServer(server.New(cfg, l, rt).Handler())
					t.Cleanup(ts.Close)

					t.Run("should serve the page", func(t *testing.T) {
						body := get(t, ts.URL+"/")
						assert.Contains(t, string(body), `id="site-dropdown"`)
						assert.Contains(t, string(body), `id="success_pie_chart"`)

						writeResult(t, resultDir, "test_page.html", bytes.NewReader(body))
					})

					t.Run("should serve the layout", func(t *testing.T) {
						body := get(t, ts.URL+server.LayoutPath)
						assert.Contains(t, string(body), layout.PayloadSliderID)

						writeResult(t, resultDir, "test_layout.json", bytes.NewReader(body))
					})

					t.Run("should update charts on every site", func(t *testing.T) {
						for _, site := range ds.Sites() {
							update := reactive.Update{
								Changed: []string{layout.SiteDropdownID},
								Inputs: reactive.Values{
									layout.SiteDropdownID:  site.String(),
									layout.PayloadSliderID: []float64{2000, 8000},
								},
							}

							body := post(t, ts.URL+server.UpdatePath, update)

							var resp struct {
								Outputs map[string]json.RawMessage `json:"outputs"`
							}
							require.NoError(t, json.Unmarshal(body, &resp))
							require.Len(t, resp.Outputs, 2)

							name := "test_update_" + strings.NewReplacer(" ", "_", "-", "_").Replace(site.String()) + ".json"
							writeResult(t, resultDir, name, bytes.NewReader(body))
						}
					})
				})
			})
		})
	})
}

func get(t *testing.T, url string) []byte {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	require.NoError(t, err)

	return do(t, req)
}

func post(t *testing.T, url string, data any) []byte {
	t.Helper()

	buf, err := json.Marshal(data)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return do(t, req)
}

func do(t *testing.T, req *http.Request) []byte {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	return body
}

func writeData(t *testing.T, dir, name string, data any) {
	t.Helper()

	buf, err := json.MarshalIndent(data, "", "  ")
	require.NoError(t, err)

	rdr := bytes.NewReader(buf)
	writeResult(t, dir, name, rdr)
}

func writeResult(t *testing.T, dir, name string, rdr io.Reader) {
	t.Helper()

	file, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer file.Close()

	_, err = io.Copy(file, rdr)
	require.NoError(t, err)
}
