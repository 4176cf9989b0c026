package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"agridash-backend/internal/auth"
	"agridash-backend/internal/metrics"
	"agridash-backend/internal/middleware"
	"agridash-backend/internal/models"
	"agridash-backend/internal/services"
	"agridash-backend/pkg/utils"
)

var feedUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type NotificationHandler struct {
	service *services.NotificationService
	jwt     *auth.JWTManager
}

func NewNotificationHandler(service *services.NotificationService, jwt *auth.JWTManager) *NotificationHandler {
	return &NotificationHandler{service: service, jwt: jwt}
}

func feedTarget(r *http.Request) string {
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return strconv.FormatInt(userID, 10)
	}
	return ""
}

// ListUnread serves the current unread snapshot for the authenticated user,
// including broadcast notifications.
func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUnread(r.Context(), feedTarget(r))
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), feedTarget(r))
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.service.MarkRead(r.Context(), id, feedTarget(r)); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}

// MarkAllRead flips a batch of notifications to read. Ids that no longer
// exist are reported back, not failed.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	var req models.MarkAllReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	missing, err := h.service.MarkAllRead(r.Context(), req.IDs, feedTarget(r))
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	if missing == nil {
		missing = []int64{}
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"marked":  len(req.IDs) - len(missing),
		"missing": missing,
	})
}

// Stream upgrades to a websocket and pushes the unread snapshot on every
// change. The first frame is the current snapshot; each subsequent frame
// replaces the previous one wholesale. Browsers cannot set Authorization
// headers on websocket upgrades, so the JWT arrives as a token query
// parameter and the feed target comes from its claims, never from the
// caller.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwt.Validate(r.URL.Query().Get("token"))
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	target := claims.UserID

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	feed, cancel, err := h.service.SubscribeUnread(r.Context(), target)
	if err != nil {
		log.Printf("[Notifications] subscribe failed: %v", err)
		return
	}
	defer cancel()

	metrics.WebsocketClients.Inc()
	defer metrics.WebsocketClients.Dec()

	// Reader goroutine detects client disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case snapshot, ok := <-feed:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}
}
