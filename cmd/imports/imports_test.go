package imports

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dszqbsm/gascan/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type api struct {
	mu    sync.Mutex
	sales []string
}

func (a *api) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r.Method == http.MethodGet {
		if r.URL.Query().Get("filter") == "+15551230001" {
			fmt.Fprint(w, `{"calls":[{"id": 7, "called_at": "2014-05-02 10:00"}]}`)
			return
		}
		fmt.Fprint(w, `{"calls":[]}`)
		return
	}
	_ = r.ParseForm()
	a.sales = append(a.sales, r.URL.Path+" "+r.PostForm.Encode())
	fmt.Fprint(w, `{}`)
}

func writeConfig(t *testing.T, dir, endPoint string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`
logLevel: DEBUG
logFile: %s
callbox:
  endPoint: %s
  agencyID: 42
  accessCode: code
  secret: secret
  backupDir: %s
`, filepath.Join(dir, "gascan.log"), endPoint, dir)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestRun_UpdateAndRestore(t *testing.T) {
	a := &api{}
	srv := httptest.NewServer(http.HandlerFunc(a.serve))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL+"/api/v1/")
	input := filepath.Join(dir, "conversions.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"call_timestamp,caller_number,partner_number,tags,value,sale_date\n"+
			"2014-05-02,+15551230001,+15550000001,Sale,120,2014-05-03\n"+
			"2014-05-02,+15551230009,+15550000001,Lead,0,\n"), 0o644))

	require.NoError(t, Run(context.Background(), cfgPath, input))
	require.Len(t, a.sales, 1)
	assert.Equal(t, "/api/v1/accounts/42/calls/7/sale.json conversion=1&name=Sale&sale_date=2014-05-03&value=120", a.sales[0])

	backups, err := filepath.Glob(filepath.Join(dir, "backup_*.json"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	require.NoError(t, Run(context.Background(), cfgPath, backups[0]))
	require.Len(t, a.sales, 2)
	assert.Equal(t, "/api/v1/accounts/42/calls/7/sale.json conversion=0&name=&sale_date=&value=0", a.sales[1])

	b, err := os.ReadFile(filepath.Join(dir, "gascan.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "backup saved")
	assert.Contains(t, string(b), "restoring backup")
}

func TestRun_UnknownInput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1/")
	err := Run(context.Background(), cfgPath, filepath.Join(dir, "conversions.txt"))
	assert.ErrorIs(t, err, ErrUnknownInput)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	cfg := config.Default()
	_, err := NewClient(zap.NewNop(), cfg)
	assert.Error(t, err)

	cfg.Callbox.AccessCode, cfg.Callbox.Secret = "code", "secret"
	cfg.Fetcher.Proxy = []string{"http://127.0.0.1:8888"}
	c, err := NewClient(zap.NewNop(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestRun_BadCSV(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1/")
	input := filepath.Join(dir, "conversions.csv")
	require.NoError(t, os.WriteFile(input, []byte("header\nnot,enough\n"), 0o644))

	err := Run(context.Background(), cfgPath, input)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "line 2"))
}
