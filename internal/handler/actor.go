package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/segyhp/installment-ledger/pkg/response"
)

// ActorHeader carries the id of the authenticated field agent. Identity is
// established upstream; this service only requires it to be present.
const ActorHeader = "X-User-Id"

type actorKey struct{}

// ActorMiddleware rejects requests without an actor and stores it in the
// request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actorID == "" {
			response.Unauthorized(w, "missing "+ActorHeader)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actorID)))
	})
}

func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor id, or "" outside ActorMiddleware.
func ActorFromContext(ctx context.Context) string {
	actorID, _ := ctx.Value(actorKey{}).(string)
	return actorID
}
