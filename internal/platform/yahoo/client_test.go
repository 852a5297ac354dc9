package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfall/stockbot/internal/domain"
)

// chartBody builds a minimal v8 chart payload. nulls holds bar indexes
// whose OHLC fields are JSON null.
func chartBody(price float64, closes []float64, nulls map[int]bool) string {
	ts, open, high, low, closeStr, vol := "", "", "", "", "", ""
	for i, c := range closes {
		if i > 0 {
			ts, open, high, low, closeStr, vol = ts+",", open+",", high+",", low+",", closeStr+",", vol+","
		}
		ts += fmt.Sprintf("%d", 1735776000+i*86400)
		if nulls[i] {
			open, high, low, closeStr, vol = open+"null", high+"null", low+"null", closeStr+"null", vol+"null"
			continue
		}
		open += fmt.Sprintf("%g", c-1)
		high += fmt.Sprintf("%g", c+2)
		low += fmt.Sprintf("%g", c-2)
		closeStr += fmt.Sprintf("%g", c)
		vol += "1000000"
	}
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":"AAPL","regularMarketPrice":%g},
		"timestamp":[%s],
		"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}
	}],"error":null}}`, price, ts, open, high, low, closeStr, vol)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, 5*time.Second)
}

func TestQuoteFromChartBars(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		require.Equal(t, "5d", r.URL.Query().Get("range"))
		require.Equal(t, "1d", r.URL.Query().Get("interval"))
		require.NotContains(t, r.Header.Get("User-Agent"), "Go-http-client")
		fmt.Fprint(w, chartBody(153.5, []float64{148, 150, 152}, nil))
	})

	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", quote.Symbol)
	require.Equal(t, 153.5, quote.CurrentPrice)
	require.Equal(t, 150.0, quote.PreviousClose)
	require.InDelta(t, 3.5, quote.Change, 0.0001)
	require.InDelta(t, 3.5/150*100, quote.ChangePercent, 0.0001)
	require.Equal(t, int64(1_000_000), quote.Volume)
}

func TestHistorySkipsNullBars(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(103, []float64{100, 101, 102, 103}, map[int]bool{1: true}))
	})

	bars, err := client.History(context.Background(), "AAPL", "3mo", "1d")
	require.NoError(t, err)
	require.Len(t, bars, 3)
	require.Equal(t, 100.0, bars[0].Close)
	require.Equal(t, 102.0, bars[1].Close)
	require.True(t, bars[0].Date.Before(bars[1].Date))
}

func TestNotFoundIsNoData(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Quote(context.Background(), "NOPE")
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestChartErrorIsNoData(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})

	_, err := client.History(context.Background(), "DELISTED", "3mo", "1d")
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestServerErrorIsNotNoData(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrNoData)
}
