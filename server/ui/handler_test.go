package ui_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mirecekd/diktatOR/pkg/client"
	"github.com/mirecekd/diktatOR/pkg/wizard"
	"github.com/mirecekd/diktatOR/server/ui"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.Dictation{
			Sentences: []string{"Věta první.", "Věta druhá."},
			FullText:  "Věta první. Věta druhá.",
		})
	})

	mux.HandleFunc("/dictate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.Synthesis{Filename: "a.mp3"})
	})

	mux.HandleFunc("/audio/a.mp3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	})

	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		score := 92.0

		json.NewEncoder(w).Encode(client.Evaluation{
			Score:          &score,
			OCRText:        "Věta první. Věta druhá.",
			EvaluationText: "HODNOCENÍ: Výborně.\nSKÓRE: 92/100",
		})
	})

	mux.HandleFunc("/evaluations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"evaluations": []client.HistoryRecord{},
		})
	})

	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	c := client.New(api.URL)

	r := chi.NewRouter()
	handler := ui.New(c, wizard.New(c, nil), nil)
	handler.Attach(r)

	app := httptest.NewServer(r)
	t.Cleanup(app.Close)

	return app
}

func noRedirects(c *http.Client) *http.Client {
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

func getBody(t *testing.T, app *httptest.Server, path string) string {
	t.Helper()

	resp, err := app.Client().Get(app.URL + path)
	require.NoError(t, err)

	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(data)
}

func postForm(t *testing.T, app *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()

	resp, err := noRedirects(app.Client()).PostForm(app.URL+path, form)
	require.NoError(t, err)

	resp.Body.Close()
	return resp
}

func TestIndexShowsSettingsStep(t *testing.T) {
	app := newTestServer(t)

	body := getBody(t, app, "/")

	require.Contains(t, body, "Vyberte nastavení a začněte s diktátem")
	require.Contains(t, body, `name="grade"`)
	require.Contains(t, body, `name="num_sentences"`)
	require.Contains(t, body, `name="pause_duration"`)
}

func TestGenerateFlow(t *testing.T) {
	app := newTestServer(t)

	resp := postForm(t, app, "/wizard/generate", url.Values{
		"grade":          {"3"},
		"num_sentences":  {"2"},
		"pause_duration": {"5"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	body := getBody(t, app, "/")
	require.Contains(t, body, "/audio/a.mp3")
	require.Contains(t, body, "Diktát připraven!")
}

func TestGenerateRejectsBadForm(t *testing.T) {
	app := newTestServer(t)

	resp := postForm(t, app, "/wizard/generate", url.Values{
		"grade":          {"three"},
		"num_sentences":  {"2"},
		"pause_duration": {"5"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFullWizardFlow(t *testing.T) {
	app := newTestServer(t)

	postForm(t, app, "/wizard/generate", url.Values{
		"grade":          {"3"},
		"num_sentences":  {"2"},
		"pause_duration": {"5"},
	})
	postForm(t, app, "/wizard/played", nil)

	body := getBody(t, app, "/")
	require.Contains(t, body, "Nyní můžete nahrát fotografii")

	resp := postImage(t, app)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	body = getBody(t, app, "/")
	require.Contains(t, body, "data:image/jpeg;base64,")

	postForm(t, app, "/wizard/evaluate", nil)

	body = getBody(t, app, "/")
	require.Contains(t, body, "92")
	require.Contains(t, body, "HODNOCENÍ:")
	require.Contains(t, body, "Vyhodnocení dokončeno!")

	postForm(t, app, "/wizard/reset", nil)

	body = getBody(t, app, "/")
	require.Contains(t, body, "Vyberte nastavení a začněte s diktátem")
}

func postImage(t *testing.T, app *httptest.Server) *http.Response {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="diktat.png"`)
	header.Set("Content-Type", "image/png")

	part, err := w.CreatePart(header)
	require.NoError(t, err)

	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := noRedirects(app.Client()).Post(app.URL+"/wizard/image", w.FormDataContentType(), &body)
	require.NoError(t, err)

	resp.Body.Close()
	return resp
}

func TestHistoryEmpty(t *testing.T) {
	app := newTestServer(t)

	body := getBody(t, app, "/predesle")

	require.Contains(t, body, "no-evaluations")
	require.Contains(t, body, "Zatím nemáte žádné vyhodnocené diktáty.")
}

func TestAudioProxy(t *testing.T) {
	app := newTestServer(t)

	resp, err := app.Client().Get(app.URL + "/audio/a.mp3")
	require.NoError(t, err)

	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	require.Equal(t, "mp3-bytes", buf.String())
}

func TestAudioProxyMissing(t *testing.T) {
	app := newTestServer(t)

	resp, err := app.Client().Get(app.URL + "/audio/missing.mp3")
	require.NoError(t, err)

	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadProxyMissing(t *testing.T) {
	app := newTestServer(t)

	resp, err := app.Client().Get(app.URL + "/uploads/missing.jpg")
	require.NoError(t, err)

	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryToggleRejectsBadIndex(t *testing.T) {
	app := newTestServer(t)

	resp := postForm(t, app, "/predesle/toggle", url.Values{"index": {"x"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
