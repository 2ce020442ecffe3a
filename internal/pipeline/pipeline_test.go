package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/fetcher"
	"github.com/sells-group/world-cities/internal/fetcher/mocks"
	"github.com/sells-group/world-cities/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const (
	citiesDump = "5368361\tLos Angeles\tLos Angeles\tLA\t34.05223\t-118.24368\tP\tPPLA2\tUS\t\tCA\t037\t\t\t3971883\t89\t96\tAmerica/Los_Angeles\t2019-09-05\n" +
		"2993458\tMonaco\tMonaco\t\t43.73333\t7.41667\tP\tPPLC\tMC\t\t00\t\t\t\t32965\t\t71\tEurope/Monaco\t2016-10-24\n" +
		"not a city line\n" +
		"9999999\tPlaceholder\tPlaceholder\t\t0\t0\tP\tPPL\tZZ\t\t01\t\t\t\t15000\t\t0\tUTC\t2020-01-01\n" +
		"2988507\tParis\tParis\t\t48.85341\t2.3488\tP\tPPLC\tFR\t\t11\t75\t751\t75056\t2138551\t\t42\tEurope/Paris\t2023-09-28\n"

	admin1Table = "US.CA\tCalifornia\tCalifornia\t5332921\n" +
		"FR.11\tÎle-de-France\tIle-de-France\t3012874\n" +
		"FR.11\tDuplicate\tDuplicate\t1\n"

	wantOutput = "name,country,subcountry,geonameid,timezone\n" +
		"Los Angeles,United States,California,5368361,America/Los_Angeles\n" +
		"Monaco,Monaco,,2993458,Europe/Monaco\n" +
		"Placeholder,No country found for alpha-2 code: ZZ,,9999999,UTC\n" +
		"Paris,France,Ile-de-France,2988507,Europe/Paris\n"
)

func zipBytes(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// geonamesServer serves the two GeoNames resources and counts requests.
func geonamesServer(t *testing.T, dump, admin1 string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	archive := zipBytes(t, "cities15000.txt", dump)
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/export/dump/cities15000.zip", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(archive) //nolint:errcheck
	})
	mux.HandleFunc("/export/dump/admin1CodesASCII.txt", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(admin1)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testConfig(t *testing.T, baseURL string) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		CitiesURL:   baseURL + "/export/dump/cities15000.zip",
		CitiesEntry: "cities15000.txt",
		Admin1URL:   baseURL + "/export/dump/admin1CodesASCII.txt",
		WorkDir:     filepath.Join(dir, "work"),
		OutputPath:  filepath.Join(dir, "data", "world-cities.csv"),
	}
}

func newHTTP() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: "test-agent"})
}

type recordingExporter struct {
	name string
	rows []model.OutputRow
	err  error
}

func (r *recordingExporter) Name() string { return r.name }

func (r *recordingExporter) Export(_ context.Context, rows []model.OutputRow) error {
	r.rows = rows
	return r.err
}

func TestRun_EndToEnd(t *testing.T) {
	srv, hits := geonamesServer(t, citiesDump, admin1Table)
	cfg := testConfig(t, srv.URL)
	exp := &recordingExporter{name: "recording"}

	result, err := New(cfg, newHTTP(), nil, exp).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, wantOutput, string(data))

	assert.Equal(t, 4, result.Cities)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, result.Subdivisions)
	assert.Equal(t, 1, result.UnresolvedCountries)
	assert.Equal(t, 2, result.UnresolvedSubdivisions)
	assert.Equal(t, cfg.OutputPath, result.OutputPath)
	assert.Equal(t, []string{"recording"}, result.Exports)
	assert.NotEmpty(t, result.RunID.String())
	assert.Positive(t, result.Elapsed)
	assert.Equal(t, int32(2), hits.Load())

	require.Len(t, exp.rows, 4)
	assert.Equal(t, "Paris", exp.rows[3].Name)

	var stages []string
	for _, s := range result.Stages {
		stages = append(stages, s.Name)
	}
	assert.Equal(t, []string{"fetch cities", "reshape", "enrich", "write", "export recording", "cleanup"}, stages)

	// Temp files are gone after success.
	for _, p := range result.TempFiles {
		assert.NoFileExists(t, p)
	}
}

func TestRun_RelativeDefaults(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, admin1Table)
	cfg := testConfig(t, srv.URL)
	cfg.WorkDir = "."
	cfg.OutputPath = "data/world-cities.csv"

	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	result, err := New(cfg, newHTTP(), nil).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "data", "world-cities.csv"))
	require.NoError(t, err)
	assert.Equal(t, wantOutput, string(data))

	assert.NoFileExists(t, filepath.Join(dir, "cities15000.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "cities15000.csv"))
	for _, p := range result.TempFiles {
		assert.NoFileExists(t, p)
	}
}

func TestRun_Idempotent(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, admin1Table)
	cfg := testConfig(t, srv.URL)
	p := New(cfg, newHTTP(), nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_EmptyDump(t *testing.T) {
	srv, _ := geonamesServer(t, "", admin1Table)
	cfg := testConfig(t, srv.URL)

	result, err := New(cfg, newHTTP(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Cities)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "name,country,subcountry,geonameid,timezone\n", string(data))
}

func TestRun_NoReferenceRows(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, "")
	cfg := testConfig(t, srv.URL)

	result, err := New(cfg, newHTTP(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Cities, result.UnresolvedSubdivisions)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Los Angeles,United States,,5368361,America/Los_Angeles\n")
}

func TestRun_KeepTemp(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, admin1Table)
	cfg := testConfig(t, srv.URL)
	cfg.KeepTemp = true

	result, err := New(cfg, newHTTP(), nil).Run(context.Background())
	require.NoError(t, err)

	txt, csvPath := cfg.TempPaths()
	assert.Equal(t, []string{txt, csvPath}, result.TempFiles)

	raw, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, citiesDump, string(raw))

	full, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(full), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Join(model.CityColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "5368361,Los Angeles,"))
}

func TestRun_CitiesDownloadFails(t *testing.T) {
	cfg := testConfig(t, "http://geonames.test")
	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, cfg.CitiesURL).Return(nil, errors.New("connection refused")).Once()

	_, err := New(cfg, f, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: fetch cities")
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestRun_Admin1DownloadFailsLeavesTemp(t *testing.T) {
	cfg := testConfig(t, "http://geonames.test")
	archive := zipBytes(t, "cities15000.txt", citiesDump)

	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, cfg.CitiesURL).Return(io.NopCloser(bytes.NewReader(archive)), nil).Once()
	f.On("Download", mock.Anything, cfg.Admin1URL).Return(nil, errors.New("download: unexpected status 503")).Once()

	_, err := New(cfg, f, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: enrich")
	assert.Contains(t, err.Error(), "503")

	txt, csvPath := cfg.TempPaths()
	assert.FileExists(t, txt)
	assert.FileExists(t, csvPath)
	assert.NoFileExists(t, cfg.OutputPath)
}

func TestRun_MalformedReferenceTable(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, "US.CA\tCalifornia\n")
	cfg := testConfig(t, srv.URL)

	_, err := New(cfg, newHTTP(), nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin1 row 1")
}

func TestRun_MissingEntry(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, admin1Table)
	cfg := testConfig(t, srv.URL)
	cfg.CitiesEntry = "cities500.txt"

	_, err := New(cfg, newHTTP(), nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"cities500.txt" not found`)
}

func TestRun_ExporterFailure(t *testing.T) {
	srv, _ := geonamesServer(t, citiesDump, admin1Table)
	cfg := testConfig(t, srv.URL)
	exp := &recordingExporter{name: "broken", err: errors.New("disk full")}

	_, err := New(cfg, newHTTP(), nil, exp).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: export broken")

	// The CSV was already written; temp files stay for inspection.
	assert.FileExists(t, cfg.OutputPath)
	txt, _ := cfg.TempPaths()
	assert.FileExists(t, txt)
}

func TestConfigTempPaths(t *testing.T) {
	tests := []struct {
		entry   string
		wantTxt string
		wantCSV string
	}{
		{"cities15000.txt", "w/cities15000.txt", "w/cities15000.csv"},
		{"cities15000", "w/cities15000", "w/cities15000.csv"},
		{"cities.csv", "w/cities.csv", "w/cities.csv.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			txt, csvPath := Config{WorkDir: "w", CitiesEntry: tt.entry}.TempPaths()
			assert.Equal(t, filepath.FromSlash(tt.wantTxt), txt)
			assert.Equal(t, filepath.FromSlash(tt.wantCSV), csvPath)
		})
	}
}
