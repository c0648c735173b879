package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgineer/eqindex/pkg/config"
	"github.com/hedgineer/eqindex/pkg/httputil"
	"github.com/hedgineer/eqindex/pkg/logger"
)

func newTestProvider(url string) *SP500 {
	cfg := &config.Config{LogLevel: "error"}
	client := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewSP500(client, logger.NewNop(), url)
}

// constituentsPage renders a minimal copy of the constituents table.
func constituentsPage(symbols []string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="constituents"><tbody>`)
	for _, s := range symbols {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s Inc.</td></tr>`, s, s)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func TestSymbols_ScrapesConstituentTable(t *testing.T) {
	symbols := make([]string, 500)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%03d", i)
	}
	symbols[0] = "BRK.B"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituentsPage(symbols))
	}))
	defer server.Close()

	got := newTestProvider(server.URL).Symbols(context.Background())

	require.Len(t, got, 500)
	assert.Equal(t, "BRK-B", got[0], "dots are normalized to dashes")
	assert.Equal(t, "SYM001", got[1])
}

func TestSymbols_FallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	got := newTestProvider(server.URL).Symbols(context.Background())

	require.NotEmpty(t, got)
	assert.Equal(t, fallbackSymbols(), got)
}

func TestSymbols_FallsBackOnTruncatedTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituentsPage([]string{"AAPL", "MSFT"}))
	}))
	defer server.Close()

	got := newTestProvider(server.URL).Symbols(context.Background())

	assert.Equal(t, fallbackSymbols(), got)
}

func TestFallbackSymbols_EnoughForTop100(t *testing.T) {
	assert.GreaterOrEqual(t, len(fallbackSymbols()), 100)
}
