package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/router"
)

func TestHTTP_EndToEnd_AdoptionLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	adopterID := "adopter-1"

	// 1) Owner publica mascota
	petID := createPet(t, ts.URL, ownerID, petPayload("Milo"))

	// 2) Aparece en el listado público (sin auth)
	{
		st, body := doReq(t, ts.URL, "GET", "/api/pets?category=dogs&search=mil", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list pets, got %d body=%s", st, string(body))
		}
		var resp struct {
			Count int `json:"count"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Count != 1 {
			t.Fatalf("expected 1 available pet, got %d", resp.Count)
		}
	}

	// 3) Adoptante solicita
	requestID := requestAdoption(t, ts.URL, adopterID, petID)
	assertPetStatus(t, ts.URL, petID, "pending")

	// 4) Owner la ve en recibidas y tiene notificación accionable
	{
		st, body := doReq(t, ts.URL, "GET", "/api/adoptions/received", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 received, got %d body=%s", st, string(body))
		}
		if !strings.Contains(string(body), requestID) {
			t.Fatalf("received list missing request %s body=%s", requestID, string(body))
		}
	}
	assertInbox(t, ts.URL, ownerID, "adoption_request", 1)

	// 5) Adoptante no puede aprobar su propia solicitud
	{
		st, _ := doReq(t, ts.URL, "PUT", "/api/adoptions/"+requestID, adopterID, map[string]any{"status": "approved"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 decide by adopter, got %d", st)
		}
	}

	// 6) Owner aprueba
	{
		st, body := doReq(t, ts.URL, "PUT", "/api/adoptions/"+requestID, ownerID, map[string]any{"status": "approved"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
	}
	assertPetStatus(t, ts.URL, petID, "pending")
	assertInbox(t, ts.URL, adopterID, "adoption_approved", 1)

	// 7) Segunda decisión => 409 invalid_state
	{
		st, body := doReq(t, ts.URL, "PUT", "/api/adoptions/"+requestID, ownerID, map[string]any{"status": "rejected"})
		if st != http.StatusConflict || errorKind(body) != "invalid_state" {
			t.Fatalf("expected 409 invalid_state on second decision, got %d body=%s", st, string(body))
		}
	}

	// 8) Owner no puede borrar la mascota mientras está en proceso
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/api/pets/"+petID, ownerID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 delete pending pet, got %d", st)
		}
	}

	// 9) Adoptante completa
	{
		st, body := doReq(t, ts.URL, "POST", "/api/adoptions/"+requestID+"/complete", adopterID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
	}
	assertPetStatus(t, ts.URL, petID, "adopted")
	assertInbox(t, ts.URL, ownerID, "adoption_completed", 2)

	// 10) Vista de detalle para ambos participantes, no para terceros
	{
		st, body := doReq(t, ts.URL, "GET", "/api/adoptions/"+requestID, adopterID, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"status":"completed"`) {
			t.Fatalf("expected completed view, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/api/adoptions/"+requestID, "stranger", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 view by stranger, got %d", st)
		}
	}

	// 11) Ya no está disponible: nueva solicitud => 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/adoptions", "adopter-2", adoptionPayload(petID))
		if st != http.StatusConflict {
			t.Fatalf("expected 409 request on adopted pet, got %d", st)
		}
	}
}

func TestHTTP_RejectReleasesPet(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	petID := createPet(t, ts.URL, "owner-1", petPayload("Luna"))
	requestID := requestAdoption(t, ts.URL, "adopter-1", petID)

	// Mientras hay una activa, otra persona no puede pedir
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/adoptions", "adopter-2", adoptionPayload(petID))
		if st != http.StatusConflict {
			t.Fatalf("expected 409 second request, got %d", st)
		}
	}

	{
		st, body := doReq(t, ts.URL, "PUT", "/api/adoptions/"+requestID, "owner-1", map[string]any{"status": "rejected"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 reject, got %d body=%s", st, string(body))
		}
	}
	assertPetStatus(t, ts.URL, petID, "available")
	assertInbox(t, ts.URL, "adopter-1", "adoption_rejected", 1)

	// Completar una rechazada => 409 invalid_state
	{
		st, body := doReq(t, ts.URL, "POST", "/api/adoptions/"+requestID+"/complete", "adopter-1", nil)
		if st != http.StatusConflict || errorKind(body) != "invalid_state" {
			t.Fatalf("expected 409 invalid_state, got %d body=%s", st, string(body))
		}
	}

	// Liberada: adopter-2 ya puede pedir
	requestAdoption(t, ts.URL, "adopter-2", petID)
}

func TestHTTP_RequestValidationAndAuth(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	petID := createPet(t, ts.URL, "owner-1", petPayload("Kiwi"))

	// Sin usuario => 401
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/adoptions", "", adoptionPayload(petID))
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/api/notifications", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 notifications without user, got %d", st)
		}
	}

	// El owner no puede pedir su propia mascota
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/adoptions", "owner-1", adoptionPayload(petID))
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 own pet, got %d", st)
		}
	}

	// Campos faltantes => 400 con todos los campos
	{
		st, body := doReq(t, ts.URL, "POST", "/api/adoptions", "adopter-1", map[string]any{"pet_id": petID})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 missing fields, got %d body=%s", st, string(body))
		}
		var resp struct {
			Error struct {
				Fields []struct {
					Field string `json:"field"`
				} `json:"fields"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Error.Fields) != 5 {
			t.Fatalf("expected 5 invalid fields, got %d body=%s", len(resp.Error.Fields), string(body))
		}
	}

	// Mascota inexistente => 404
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/adoptions", "adopter-1", adoptionPayload("missing"))
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 missing pet, got %d", st)
		}
	}

	// Categoría desconocida => 400
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/pets?category=dragons", "", nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown category, got %d", st)
		}
	}
}

func TestHTTP_RateLimitsAdoptionRequests(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		RateLimiter: middleware.NewRateLimiter(1, 1),
	}))
	defer ts.Close()

	petA := createPet(t, ts.URL, "owner-1", petPayload("A"))
	petB := createPet(t, ts.URL, "owner-1", petPayload("B"))

	requestAdoption(t, ts.URL, "adopter-1", petA)

	st, _ := doReq(t, ts.URL, "POST", "/api/adoptions", "adopter-1", adoptionPayload(petB))
	if st != http.StatusTooManyRequests {
		t.Fatalf("expected 429 second request, got %d", st)
	}

	// El bucket es por usuario
	requestAdoption(t, ts.URL, "adopter-2", petB)
}

func TestHTTP_NotificationsInbox(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	petID := createPet(t, ts.URL, "owner-1", petPayload("Nala"))
	requestAdoption(t, ts.URL, "adopter-1", petID)

	id := assertInbox(t, ts.URL, "owner-1", "adoption_request", 1)

	// Otro usuario no puede tocarla
	{
		st, _ := doReq(t, ts.URL, "PUT", "/api/notifications/"+id+"/read", "adopter-1", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 mark foreign notification, got %d", st)
		}
	}

	{
		st, body := doReq(t, ts.URL, "PUT", "/api/notifications/read-all", "owner-1", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"updated":1`) {
			t.Fatalf("expected 200 read-all updated=1, got %d body=%s", st, string(body))
		}
	}
	assertInbox(t, ts.URL, "owner-1", "adoption_request", 0)

	{
		st, _ := doReq(t, ts.URL, "DELETE", "/api/notifications/"+id, "owner-1", nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete notification, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/api/notifications/"+id, "owner-1", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 deleting twice, got %d", st)
		}
	}
}

func TestHTTP_UpdatePetAcceptsPatchAndPut(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	petID := createPet(t, ts.URL, "owner-1", petPayload("Luna"))

	for method, name := range map[string]string{"PATCH": "Luna II", "PUT": "Luna III"} {
		st, body := doReq(t, ts.URL, method, "/api/pets/"+petID, "owner-1", map[string]any{"name": name})
		if st != http.StatusOK {
			t.Fatalf("%s: expected 200 update pet, got %d body=%s", method, st, string(body))
		}
		var resp struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Breed  string `json:"breed"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Name != name || resp.Status != "available" || resp.Breed == "" {
			t.Fatalf("%s: unexpected pet after update: %+v", method, resp)
		}

		st, _ = doReq(t, ts.URL, method, "/api/pets/"+petID, "intruder", map[string]any{"name": "x"})
		if st != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for non-owner, got %d", method, st)
		}
	}
}

func TestHTTP_PanicInVerifierReturnsJSON500(t *testing.T) {
	verifier := auth.VerifierFunc(func(context.Context, string) (auth.Claims, error) {
		panic("verifier exploded")
	})
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: verifier}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/me/pets", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer tok")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body=%s", res.StatusCode, string(body))
	}
	if got := errorKind(body); got != "internal" {
		t.Fatalf("expected internal error kind, got %q body=%s", got, string(body))
	}
}

func TestHTTP_HealthMetricsAndRequestID(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", res.StatusCode)
	}
	if res.Header.Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("expected %s header", middleware.RequestIDHeader)
	}

	petID := createPet(t, ts.URL, "owner-1", petPayload("Rocky"))
	requestAdoption(t, ts.URL, "adopter-1", petID)

	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	for _, want := range []string{
		`adoption_transitions_total{outcome="ok",transition="request"} 1`,
		`notifications_emitted_total{type="adoption_request"} 1`,
		`http_requests_total{method="POST",route="/api/adoptions/",status="201"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func petPayload(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"category":    "dogs",
		"breed":       "Mixed",
		"age":         "2 years",
		"weight":      "10 kg",
		"gender":      "Male",
		"description": "Friendly " + name,
		"image_url":   "https://img.example.com/" + name + ".jpg",
	}
}

func adoptionPayload(petID string) map[string]any {
	return map[string]any{
		"pet_id":        petID,
		"reason":        "We have a garden",
		"experience":    "Two dogs before",
		"contact_name":  "Ana",
		"contact_email": "ana@example.com",
		"contact_phone": "555-0101",
	}
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}
	return idOf(t, body)
}

func requestAdoption(t *testing.T, baseURL, userID, petID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/adoptions", userID, adoptionPayload(petID))
	if st != http.StatusCreated {
		t.Fatalf("expected 201 adoption request, got %d body=%s", st, string(body))
	}
	return idOf(t, body)
}

func assertPetStatus(t *testing.T, baseURL, petID, want string) {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/pets/"+petID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
	}
	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Status != want {
		t.Fatalf("expected pet status %q, got %q", want, resp.Status)
	}
}

// assertInbox comprueba que la más reciente sea del tipo dado y devuelve su id.
func assertInbox(t *testing.T, baseURL, userID, wantType string, wantUnread int) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/notifications", userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 notifications, got %d body=%s", st, string(body))
	}
	var resp struct {
		Notifications []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"notifications"`
		UnreadCount int `json:"unread_count"`
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp.Notifications) == 0 || resp.Notifications[0].Type != wantType {
		t.Fatalf("expected latest notification %q body=%s", wantType, string(body))
	}
	if resp.UnreadCount != wantUnread {
		t.Fatalf("expected unread=%d, got %d", wantUnread, resp.UnreadCount)
	}
	return resp.Notifications[0].ID
}

func idOf(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("missing id body=%s", string(body))
	}
	return resp.ID
}

func errorKind(body []byte) string {
	var resp struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Error.Kind
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
