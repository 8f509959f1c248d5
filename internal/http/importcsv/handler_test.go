package importcsv_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/http/importcsv"
	"github.com/MrJamesThe3rd/refassist/internal/importer"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	"github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

func upload(t *testing.T, fields map[string]string, file string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != "" {
		fw, err := mw.CreateFormFile("file", "schedule.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(file))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/games", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestHandler_ImportGames(t *testing.T) {
	tests := map[string]struct {
		fields    map[string]string
		file      string
		wantCode  int
		wantGames int
	}{
		"Schedule": {
			file:      "Date,Time,League,Home,Away,Pay\n2024-05-01,18:30,U14,Rovers,United,45\n2024-05-02,10:00,U12,City,Town,35\n",
			wantCode:  http.StatusCreated,
			wantGames: 2,
		},
		"ExplicitSource": {
			fields:    map[string]string{"source": "schedule"},
			file:      "Date,Home,Away,Pay\n2024-05-01,Rovers,United,45\n",
			wantCode:  http.StatusCreated,
			wantGames: 1,
		},
		"UnknownSource": {
			fields:   map[string]string{"source": "fax"},
			file:     "Date,Home,Away,Pay\n2024-05-01,Rovers,United,45\n",
			wantCode: http.StatusBadRequest,
		},
		"BadRowRejectsAll": {
			file:     "Date,Home,Away,Pay\n2024-05-01,Rovers,United,45\n2024-05-02,City,Town,lots\n",
			wantCode: http.StatusBadRequest,
		},
		"MissingFile": {
			fields:   map[string]string{"source": "schedule"},
			wantCode: http.StatusBadRequest,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := store.NewFileStore(t.TempDir())
			require.NoError(t, err)

			s, err := ledger.Open(context.Background(), repo)
			require.NoError(t, err)

			r := chi.NewRouter()
			r.Route("/import", importcsv.NewHandler(importer.NewService(), s).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, upload(t, tt.fields, tt.file))

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Len(t, s.State().Games, tt.wantGames)

			if tt.wantCode != http.StatusCreated {
				return
			}

			var got struct {
				Imported int           `json:"imported"`
				Games    []ledger.Game `json:"games"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantGames, got.Imported)
			assert.Len(t, got.Games, tt.wantGames)
		})
	}
}
