package signaling

import "log/slog"

// Notifier receives membership change notifications after the corresponding
// state transition has committed. Implementations must not block.
type Notifier interface {
	PeerConnected(peerID string)
	PeerJoined(roomID, peerID string)
	PeerLeft(roomID, peerID string)
	PeerDisconnected(peerID string)
}

// Router interprets inbound frames and drives the store. One router serves
// every connection; calls for a given connection arrive from that
// connection's read loop, so its messages are handled in order.
//
// Delivery is fire and forget: membership snapshots are taken under the store
// lock, sends happen after it is released, and a failed send (the recipient
// is closing concurrently) is ignored.
type Router struct {
	store    *Store
	notifier Notifier
	logger   *slog.Logger
}

// NewRouter creates a router over store. notifier may be nil.
func NewRouter(store *Store, notifier Notifier) *Router {
	return &Router{
		store:    store,
		notifier: notifier,
		logger:   slog.Default(),
	}
}

// HandleConnect registers conn, tells it its own identity and returns it.
func (r *Router) HandleConnect(conn Conn) string {
	id := r.store.Register(conn)
	r.send(conn, encodeNotice(TypeYourID, id))
	if r.notifier != nil {
		r.notifier.PeerConnected(id)
	}
	r.logger.Info("peer connected", "peerID", id)
	return id
}

// HandleMessage dispatches one inbound frame from conn. Frames that cannot
// be decoded or that violate the protocol are dropped without closing conn
// and without touching shared state.
func (r *Router) HandleMessage(conn Conn, raw []byte) {
	env, ok := decodeEnvelope(raw)
	if !ok {
		r.logger.Debug("dropping undecodable frame")
		return
	}

	switch msgType := env.stringField("type"); msgType {
	case TypeJoin:
		r.handleJoin(conn, env)
	case TypeOffer, TypeAnswer, TypeCandidate:
		r.handleForward(conn, env)
	default:
		r.logger.Debug("ignoring unknown message type", "type", msgType)
	}
}

// HandleDisconnect runs the close/error cleanup for conn. Calling it again
// for the same connection is a no-op.
func (r *Router) HandleDisconnect(conn Conn) {
	res, ok := r.store.RemovePeer(conn)
	if !ok {
		return
	}
	if res.Room != "" {
		r.fanout(res.Remaining, encodeNotice(TypeUserLeft, res.ID))
		if r.notifier != nil {
			r.notifier.PeerLeft(res.Room, res.ID)
		}
	}
	if r.notifier != nil {
		r.notifier.PeerDisconnected(res.ID)
	}
	r.logger.Info("peer disconnected", "peerID", res.ID, "roomID", res.Room)
}

func (r *Router) handleJoin(conn Conn, env envelope) {
	roomID := env.stringField("roomId")
	if roomID == "" {
		r.logger.Debug("join without roomId")
		return
	}

	res, ok := r.store.JoinRoom(conn, roomID)
	if !ok {
		return
	}

	// Moving out of a previous room mirrors the disconnect cleanup: the old
	// room hears user-left and is pruned when emptied.
	if res.Left != "" {
		r.fanout(res.Remaining, encodeNotice(TypeUserLeft, res.ID))
		if r.notifier != nil {
			r.notifier.PeerLeft(res.Left, res.ID)
		}
	}

	// Tell the room about the new arrival, then tell the arrival about each
	// existing member, one notification per peer.
	r.fanout(res.Others, encodeNotice(TypeUserJoined, res.ID))
	for _, member := range res.Others {
		r.send(conn, encodeNotice(TypeUserJoined, member.ID))
	}

	if res.New && r.notifier != nil {
		r.notifier.PeerJoined(roomID, res.ID)
	}
	r.logger.Info("peer joined room", "peerID", res.ID, "roomID", roomID)
}

func (r *Router) handleForward(conn Conn, env envelope) {
	to := env.stringField("to")
	if to == "" {
		r.logger.Debug("signaling message without target")
		return
	}

	target, from, ok := r.store.ResolveTarget(conn, to)
	if !ok {
		// Target unknown, in another room, or the sender has no room yet.
		// Best effort: the sender is not told.
		r.logger.Debug("dropping unroutable signaling message", "to", to)
		return
	}

	data, err := env.forward(from)
	if err != nil {
		r.logger.Debug("dropping unencodable forward", "error", err)
		return
	}
	r.send(target, data)
}

// fanout delivers data to each member independently. A failed send means the
// recipient is closing; it never aborts delivery to the rest.
func (r *Router) fanout(members []Member, data []byte) {
	for _, member := range members {
		r.send(member.Conn, data)
	}
}

func (r *Router) send(conn Conn, data []byte) {
	if err := conn.Send(data); err != nil {
		r.logger.Debug("send failed", "error", err)
	}
}
