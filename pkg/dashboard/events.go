package dashboard

import (
	"context"
	"fmt"
	"net/http"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Follow reads StatusChanged events from the admin event stream at wsURL
// and feeds them to store until ctx ends or the connection drops.
func Follow(ctx context.Context, wsURL string, header http.Header, store *Store) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("dial event stream: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	log := logger.WithContext(ctx)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		var evt domain.StatusChanged
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Warn().Err(err).Msg("Dashboard: undecodable event skipped")
			continue
		}
		store.Apply(evt)
	}
}
