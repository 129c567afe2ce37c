package rpc

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet"
)

// SessionService exposes one Session over a Server. Requests run one at a time, in arrival
// order.
type SessionService struct {
	mu      sync.Mutex
	session *mdsheet.Session
}

// RegisterSession registers every session method on srv.
func RegisterSession(srv *Server, session *mdsheet.Session) *SessionService {
	svc := &SessionService{session: session}
	for _, method := range mdsheet.Methods() {
		srv.RegisterOrdered(method, svc.handler(method))
	}
	return svc
}

func (svc *SessionService) handler(method string) Handler {
	return func(ctx context.Context, params json.RawMessage) (any, *Error) {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		svc.mu.Lock()
		resp := svc.session.Call(method, params)
		svc.mu.Unlock()
		if resp.Failed() {
			return nil, &Error{Message: resp.Error, Data: map[string]string{"kind": resp.Kind}}
		}
		return resp.Result, nil
	}
}
