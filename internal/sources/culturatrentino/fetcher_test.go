package culturatrentino

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/httpx"
)

var testTime = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

const calendarPayload = `{
  "result": {
    "events": [
      {
        "tipo_evento": [
          {
            "events": [
              {
                "id": 298850,
                "name": "Arditodesìo",
                "identifier": "2026-2-9",
                "orario_svolgimento": "ore 20.30",
                "luogo_della_cultura": [{"name": "Teatro Cuminetti"}, {"name": "Sala B"}],
                "comune": [{"name": "Trento"}],
                "href": "https://www.cultura.trentino.it/eventi/298850",
                "iniziativa": [{"name": "Stagione di prosa"}]
              },
              {
                "id": 298851,
                "name": "Senza orario",
                "identifier": "2026-2-10",
                "orario_svolgimento": "",
                "luogo_della_cultura": [{"name": "Teatro Sociale"}],
                "comune": [{"name": "Trento"}],
                "href": "https://www.cultura.trentino.it/eventi/298851",
                "iniziativa": []
              },
              {
                "id": 298852,
                "name": "",
                "identifier": "2026-2-11",
                "href": "https://www.cultura.trentino.it/eventi/298852"
              },
              {
                "id": 298853,
                "name": "Identificatore rotto",
                "identifier": "prossimamente",
                "href": "https://www.cultura.trentino.it/eventi/298853"
              }
            ]
          }
        ]
      }
    ]
  }
}`

func newTestClient() *httpx.Client {
	return httpx.New(httpx.Options{RequestsPerSecond: 1000, MaxAttempts: 1})
}

func TestFetcher_Fetch_MapsAndDeduplicates(t *testing.T) {
	var mu sync.Mutex
	var whens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		whens = append(whens, r.URL.Query().Get("when"))
		mu.Unlock()
		assert.Equal(t, "30734", r.URL.Query().Get("what"))
		_, _ = w.Write([]byte(calendarPayload))
	}))
	defer srv.Close()

	f := New(Config{
		Name:       "cultura.trentino.it",
		WeeksAhead: 2,
		BaseURL:    srv.URL,
	}, newTestClient(), clock.NewFixed(testTime))

	events, err := f.Fetch(context.Background())

	require.NoError(t, err)
	// Every query returns the same payload; ids keep records unique.
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "Arditodesìo", first.Title)
	assert.Equal(t, "2026-02-09", first.Date, "identifier dates are zero-padded")
	require.NotNil(t, first.Time)
	assert.Equal(t, "20:30", *first.Time)
	assert.Equal(t, "Teatro Cuminetti", first.Venue, "first listed venue wins")
	assert.Equal(t, "Trento", first.Location)
	assert.Equal(t, "https://www.cultura.trentino.it/eventi/298850", first.SourceURL)
	assert.Equal(t, "cultura.trentino.it", first.SourceName)
	require.NotNil(t, first.Description)
	assert.Equal(t, "Stagione di prosa | ore 20.30", *first.Description)

	second := events[1]
	assert.Equal(t, "Senza orario", second.Title)
	assert.Nil(t, second.Time)
	assert.Nil(t, second.Description)

	// Named ranges first, then one dd/mm/yyyy query per configured week.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"today", "week", "month", "08/02/2026", "15/02/2026"}, whens)
}

func TestFetcher_Fetch_PartialQueryFailureTolerated(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(calendarPayload))
	}))
	defer srv.Close()

	f := New(Config{Name: "cultura.trentino.it", WeeksAhead: 1, BaseURL: srv.URL},
		newTestClient(), clock.NewFixed(testTime))

	events, err := f.Fetch(context.Background())

	require.NoError(t, err, "one failed range must not fail the source")
	assert.Len(t, events, 2)
}

func TestFetcher_Fetch_AllQueriesFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Config{Name: "cultura.trentino.it", WeeksAhead: 1, BaseURL: srv.URL},
		newTestClient(), clock.NewFixed(testTime))

	events, err := f.Fetch(context.Background())

	require.Error(t, err)
	assert.Nil(t, events)
	assert.Contains(t, err.Error(), "all calendar queries failed")
}

func TestFetcher_Name(t *testing.T) {
	f := New(Config{Name: "cultura.trentino.it"}, newTestClient(), nil)
	assert.Equal(t, "cultura.trentino.it", f.Name())
}

func TestIdentifierDate(t *testing.T) {
	tests := []struct {
		identifier string
		want       string
		wantErr    bool
	}{
		{"2026-2-9", "2026-02-09", false},
		{"2026-12-31", "2026-12-31", false},
		{"2026-2-30", "", true},
		{"2026-13-1", "", true},
		{"prossimamente", "", true},
		{"2026-2", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			got, err := identifierDate(tt.identifier)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		orario string
		want   string
		absent bool
	}{
		{"ore 20.30", "20:30", false},
		{"ore 20:30", "20:30", false},
		{"ore 9.00 e ore 11.00", "09:00", false},
		{"ingresso libero", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.orario, func(t *testing.T) {
			got := extractTime(tt.orario)
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
