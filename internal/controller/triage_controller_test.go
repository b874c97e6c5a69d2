package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"aivaidya-be/internal/dto"
	"aivaidya-be/internal/pkg/serverutils"
	"aivaidya-be/pkg/llm"
	"aivaidya-be/pkg/triage"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeTriageService struct {
	diagnoseReqs []triage.Request
	diagnosis    *triage.Diagnosis
	diagnoseErr  error
	selfTest     *dto.SelfTestResponse
	selfTestErr  error
	stats        *dto.TriageStatsResponse
}

func (f *fakeTriageService) Diagnose(ctx context.Context, req triage.Request) (*triage.Diagnosis, error) {
	f.diagnoseReqs = append(f.diagnoseReqs, req)
	return f.diagnosis, f.diagnoseErr
}

func (f *fakeTriageService) SelfTest(ctx context.Context) (*dto.SelfTestResponse, error) {
	return f.selfTest, f.selfTestErr
}

func (f *fakeTriageService) Stats(ctx context.Context) (*dto.TriageStatsResponse, error) {
	return f.stats, nil
}

func (f *fakeTriageService) ProviderName() string { return "fake" }

func newTestApp(svc *fakeTriageService, maxImageBytes int64) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	api := app.Group("/api")
	NewTriageController(svc, triage.MaxImages, maxImageBytes).RegisterRoutes(api, serverutils.JwtMiddleware(testSecret))
	NewHealthController("fake").RegisterRoutes(api)
	return app
}

type upload struct {
	name     string
	mimeType string
	data     []byte
}

func multipartRequest(t *testing.T, symptoms *string, uploads []upload) *http.Request {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if symptoms != nil {
		require.NoError(t, w.WriteField("symptoms", *symptoms))
	}
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, u.name))
		h.Set("Content-Type", u.mimeType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/diagnose", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func strPtr(s string) *string { return &s }

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestDiagnoseSuccess(t *testing.T) {
	svc := &fakeTriageService{diagnosis: &triage.Diagnosis{
		Result: triage.Interpret(`{"urgency":"routine","redFlags":[]}`),
		Model:  "gemini-2.0-flash",
	}}
	app := newTestApp(svc, 0)

	resp, err := app.Test(multipartRequest(t, strPtr("fever and cough for 3 days"), nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gemini-2.0-flash", resp.Header.Get("X-Triage-Model"))
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"urgency": "routine", "redFlags": []interface{}{}}, body["data"])
	require.Len(t, svc.diagnoseReqs, 1)
	assert.Equal(t, "fever and cough for 3 days", svc.diagnoseReqs[0].Symptoms)
}

func TestDiagnoseRawResult(t *testing.T) {
	svc := &fakeTriageService{diagnosis: &triage.Diagnosis{Result: triage.Interpret("I cannot help with that")}}
	app := newTestApp(svc, 0)

	resp, err := app.Test(multipartRequest(t, strPtr("x"), nil), -1)
	require.NoError(t, err)

	body := decodeBody(t, resp)
	assert.Equal(t, map[string]interface{}{"raw": "I cannot help with that"}, body["data"])
}

func TestDiagnoseBlankSymptoms(t *testing.T) {
	for _, symptoms := range []*string{nil, strPtr(""), strPtr("   ")} {
		svc := &fakeTriageService{}
		app := newTestApp(svc, 0)

		resp, err := app.Test(multipartRequest(t, symptoms, []upload{{name: "a.png", mimeType: "image/png", data: []byte("x")}}), -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Please describe your symptoms.", body["message"])
		assert.Empty(t, svc.diagnoseReqs)
	}
}

func TestDiagnoseUrlEncodedForm(t *testing.T) {
	svc := &fakeTriageService{diagnosis: &triage.Diagnosis{Result: triage.Interpret(`{}`)}}
	app := newTestApp(svc, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/diagnose", strings.NewReader("symptoms=headache"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, svc.diagnoseReqs, 1)
	assert.Empty(t, svc.diagnoseReqs[0].Images)
}

func TestDiagnoseTruncatesImages(t *testing.T) {
	svc := &fakeTriageService{diagnosis: &triage.Diagnosis{Result: triage.Interpret(`{}`)}}
	app := newTestApp(svc, 0)

	uploads := []upload{
		{name: "1.png", mimeType: "image/png", data: []byte("one")},
		{name: "2.jpg", mimeType: "image/jpeg", data: []byte("two")},
		{name: "3.webp", mimeType: "image/webp", data: []byte("three")},
		{name: "4.png", mimeType: "image/png", data: []byte("four")},
	}
	resp, err := app.Test(multipartRequest(t, strPtr("rash"), uploads), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, svc.diagnoseReqs, 1)
	images := svc.diagnoseReqs[0].Images
	require.Len(t, images, 3)
	assert.Equal(t, "1.png", images[0].Name)
	assert.Equal(t, "image/webp", images[2].MIMEType)
	assert.Equal(t, []byte("three"), images[2].Data)
}

func TestDiagnoseOversizeImage(t *testing.T) {
	svc := &fakeTriageService{}
	app := newTestApp(svc, 4)

	resp, err := app.Test(multipartRequest(t, strPtr("rash"), []upload{{name: "big.png", mimeType: "image/png", data: []byte("12345")}}), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "big.png")
	assert.Empty(t, svc.diagnoseReqs)
}

func TestDiagnoseOversizeBeyondLimitIsIgnored(t *testing.T) {
	svc := &fakeTriageService{diagnosis: &triage.Diagnosis{Result: triage.Interpret(`{}`)}}
	app := newTestApp(svc, 4)

	uploads := []upload{
		{name: "1.png", mimeType: "image/png", data: []byte("a")},
		{name: "2.png", mimeType: "image/png", data: []byte("b")},
		{name: "3.png", mimeType: "image/png", data: []byte("c")},
		{name: "4.png", mimeType: "image/png", data: []byte("far too large")},
	}
	resp, err := app.Test(multipartRequest(t, strPtr("rash"), uploads), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDiagnoseErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "configuration", err: llm.NewError(llm.KindConfiguration, 500, "Server missing GOOGLE_API_KEY"), wantStatus: 500, wantMsg: "Server missing GOOGLE_API_KEY"},
		{name: "upstream status kept", err: llm.NewError(llm.KindUpstream, 429, "Resource has been exhausted"), wantStatus: 429, wantMsg: "Resource has been exhausted"},
		{name: "upstream without status", err: llm.NewError(llm.KindUpstream, 0, "connection reset"), wantStatus: 500, wantMsg: "connection reset"},
		{name: "safety block", err: llm.SafetyBlocked("SAFETY"), wantStatus: 422, wantMsg: "SafetyBlocked: SAFETY"},
		{name: "model not found after fallback", err: llm.NewError(llm.KindModelNotFound, 404, "models/gemini-1.5-flash is not found"), wantStatus: 404, wantMsg: "models/gemini-1.5-flash is not found"},
		{name: "plain error", err: fmt.Errorf("boom"), wantStatus: 500, wantMsg: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeTriageService{diagnoseErr: tt.err}, 0)

			resp, err := app.Test(multipartRequest(t, strPtr("fever"), nil), -1)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestSelfTestEndpoint(t *testing.T) {
	app := newTestApp(&fakeTriageService{selfTest: &dto.SelfTestResponse{Success: true, Echo: "OK", Model: "gemini-2.0-flash"}}, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ai/self-test", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "OK", body["echo"])

	app = newTestApp(&fakeTriageService{selfTestErr: llm.NewError(llm.KindConfiguration, 500, "Server missing GOOGLE_API_KEY")}, 0)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ai/self-test", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Server missing GOOGLE_API_KEY", body["message"])
}

func signedToken(t *testing.T, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "operator-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestStatsRequiresToken(t *testing.T) {
	app := newTestApp(&fakeTriageService{stats: &dto.TriageStatsResponse{Total: 3, Counters: map[string]int64{"total": 3}}}, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ai/stats", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "wrong-secret"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/ai/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&fakeTriageService{}, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, map[string]interface{}{"status": "ok", "provider": "fake"}, body["data"])
}
