package remote

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/logging"
	"github.com/hungduong/loveanniversary/internal/models"
)

// subscription is a live websocket feed of remote document snapshots.
type subscription struct {
	conn *websocket.Conn
	ch   chan *models.Document
	log  *logging.Logger
	once sync.Once
}

// dialSubscription opens the websocket and starts the read loop.
func dialSubscription(ctx context.Context, wsURL string) (*subscription, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, apperrors.Wrap(apperrors.ErrSyncUnavailable, "failed to open remote subscription", err)
	}

	s := &subscription{
		conn: conn,
		ch:   make(chan *models.Document, 8),
		log:  logging.Get().With("remote"),
	}
	go s.readLoop()
	return s, nil
}

// Updates delivers remote document snapshots. The channel closes when the
// connection ends.
func (s *subscription) Updates() <-chan *models.Document {
	return s.ch
}

// readLoop decodes pushed snapshots until the connection fails or closes.
func (s *subscription) readLoop() {
	defer close(s.ch)

	for {
		var doc models.Document
		if err := s.conn.ReadJSON(&doc); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("remote subscription read ended", logging.Fields{"error": err.Error()})
			}
			return
		}

		// Drop the oldest pending snapshot rather than block the reader;
		// only the newest state matters.
		select {
		case s.ch <- &doc:
		default:
			select {
			case <-s.ch:
			default:
			}
			s.ch <- &doc
		}
	}
}

// Close tears the subscription down. Idempotent.
func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}
