package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "riderlink/internal/app/services/auth"
	chatsvc "riderlink/internal/app/services/chat"
	offerssvc "riderlink/internal/app/services/offers"
	riderssvc "riderlink/internal/app/services/riders"
	sponsorssvc "riderlink/internal/app/services/sponsors"
	"riderlink/internal/domain/profile"
	"riderlink/internal/infra/obs"
	"riderlink/internal/infra/security"
	"riderlink/internal/infra/session"
	"riderlink/internal/infra/storage/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	riders := memory.NewRiderRepository()
	sponsors := memory.NewSponsorRepository()
	directory := profile.Directory{Riders: riders, Sponsors: sponsors}

	authService := &authsvc.Service{
		Riders:      riders,
		Sponsors:    sponsors,
		Passwords:   security.BcryptHasher{Cost: 4},
		Tokens:      security.JWTCodec{Secret: []byte("test-secret")},
		Revocations: session.NewMemoryRevocationStore(),
		SessionTTL:  time.Hour,
	}
	chatService := &chatsvc.Service{
		Conversations: memory.NewConversationRepository(),
		Messages:      memory.NewMessageRepository(),
		Profiles:      directory,
		Outbox:        memory.NewOutbox(),
	}
	riderService := &riderssvc.Service{Riders: riders}
	sponsorService := &sponsorssvc.Service{Sponsors: sponsors}
	offerService := &offerssvc.Service{
		Offers: memory.NewOfferRepository(),
		Outbox: memory.NewOutbox(),
	}

	authMW := AuthMiddleware{Service: authService, CookieName: "riderlink_session"}
	handlers := Handlers{
		Auth:           AuthHandler{Service: authService, Riders: riderService, Sponsors: sponsorService, CookieName: "riderlink_session"},
		Chat:           ChatHandler{Service: chatService},
		Rider:          RiderHandler{Service: riderService},
		Sponsor:        SponsorHandler{Service: sponsorService},
		Offer:          OfferHandler{Service: offerService},
		AuthMiddleware: authMW.Handle,
	}
	return NewRouter(obs.Middleware{}, obs.HealthHandlers{}, handlers)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

type sessionBody struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	Token    string `json:"token"`
}

func registerAccount(t *testing.T, router *gin.Engine, body map[string]any) sessionBody {
	t.Helper()
	recorder := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var out sessionBody
	decode(t, recorder, &out)
	require.NotEmpty(t, out.Token)
	return out
}

func registerRider(t *testing.T, router *gin.Engine, n int) sessionBody {
	return registerAccount(t, router, map[string]any{
		"user_type": "rider",
		"email":     fmt.Sprintf("rider%d@example.com", n),
		"password":  "secret-pass",
		"username":  fmt.Sprintf("rider%d", n),
	})
}

func registerSponsor(t *testing.T, router *gin.Engine, n int) sessionBody {
	return registerAccount(t, router, map[string]any{
		"user_type":    "sponsor",
		"email":        fmt.Sprintf("sponsor%d@example.com", n),
		"password":     "secret-pass",
		"company_name": fmt.Sprintf("Sponsor %d", n),
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	live := doJSON(t, router, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, live.Code)

	ready := doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, ready.Code)

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	decode(t, ready, &body)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "riderlink", body.Service)
}

func TestChatRequiresAuthentication(t *testing.T) {
	router := newTestRouter(t)
	recorder := doJSON(t, router, http.MethodGet, "/api/v1/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestConversationFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	riderSession := registerRider(t, router, 1)
	sponsorSession := registerSponsor(t, router, 1)

	// The sponsor opens a conversation with the rider.
	recorder := doJSON(t, router, http.MethodPost, "/api/v1/conversations", sponsorSession.Token, map[string]any{
		"user_id":   riderSession.UserID,
		"user_type": "rider",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var created struct {
		ID      string `json:"id"`
		Created bool   `json:"created"`
	}
	decode(t, recorder, &created)
	assert.True(t, created.Created)

	// Re-resolving from the rider side returns the same conversation.
	recorder = doJSON(t, router, http.MethodPost, "/api/v1/conversations", riderSession.Token, map[string]any{
		"user_id":   sponsorSession.UserID,
		"user_type": "sponsor",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var resolved struct {
		ID string `json:"id"`
	}
	decode(t, recorder, &resolved)
	assert.Equal(t, created.ID, resolved.ID)

	recorder = doJSON(t, router, http.MethodPost, "/api/v1/conversations/"+created.ID+"/messages", sponsorSession.Token, map[string]any{
		"content": "hello rider",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodGet, "/api/v1/conversations/unread", riderSession.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var unread struct {
		TotalUnreadCount int64 `json:"totalUnreadCount"`
	}
	decode(t, recorder, &unread)
	assert.Equal(t, int64(1), unread.TotalUnreadCount)

	recorder = doJSON(t, router, http.MethodPost, "/api/v1/conversations/"+created.ID+"/read", riderSession.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var marked struct {
		MarkedCount int64 `json:"marked_count"`
	}
	decode(t, recorder, &marked)
	assert.Equal(t, int64(1), marked.MarkedCount)

	// The other side's session cannot touch a foreign conversation.
	outsider := registerRider(t, router, 2)
	recorder = doJSON(t, router, http.MethodGet, "/api/v1/conversations/"+created.ID+"/messages", outsider.Token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestSelfConversationRejected(t *testing.T) {
	router := newTestRouter(t)
	riderSession := registerRider(t, router, 1)

	recorder := doJSON(t, router, http.MethodPost, "/api/v1/conversations", riderSession.Token, map[string]any{
		"user_id":   riderSession.UserID,
		"user_type": "rider",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestOfferEndpointsEnforceRoles(t *testing.T) {
	router := newTestRouter(t)
	riderSession := registerRider(t, router, 1)
	sponsorSession := registerSponsor(t, router, 1)

	// Riders cannot publish offers.
	recorder := doJSON(t, router, http.MethodPost, "/api/v1/offers", riderSession.Token, map[string]any{
		"title": "nope", "description": "nope",
	})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/v1/offers", sponsorSession.Token, map[string]any{
		"title":       "Team rider wanted",
		"description": "Join the street team",
		"sport":       "bmx",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var offer struct {
		ID string `json:"id"`
	}
	decode(t, recorder, &offer)

	recorder = doJSON(t, router, http.MethodPost, "/api/v1/offers/"+offer.ID+"/apply", riderSession.Token, map[string]any{
		"message": "pick me",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	// Applying twice conflicts.
	recorder = doJSON(t, router, http.MethodPost, "/api/v1/offers/"+offer.ID+"/apply", riderSession.Token, map[string]any{
		"message": "again",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// Sponsors cannot apply.
	recorder = doJSON(t, router, http.MethodPost, "/api/v1/offers/"+offer.ID+"/apply", sponsorSession.Token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	router := newTestRouter(t)
	riderSession := registerRider(t, router, 1)

	recorder := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", riderSession.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", riderSession.Token, nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", riderSession.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
