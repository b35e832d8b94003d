package consumer

import (
	"bytes"
	"context"
	"image/jpeg"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tauraamui/framegrab/internal/process"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	previewQuality   = 80
	previewWriteWait = 250 * time.Millisecond
)

const previewPage = `<!DOCTYPE html>
<html><head><title>framegrab</title></head>
<body style="margin:0;background:#111">
<img id="frame" style="display:block;margin:auto">
<script>
const img = document.getElementById("frame");
const ws = new WebSocket("ws://" + location.host + "/stream");
ws.binaryType = "blob";
ws.onmessage = (e) => {
	const url = URL.createObjectURL(e.data);
	img.onload = () => URL.revokeObjectURL(url);
	img.src = url;
};
</script>
</body></html>`

// Preview serves delivered frames to browsers as JPEG images over a
// websocket. Frames are sent by a background broadcaster so a slow
// browser never holds up delivery. Clients which cannot keep up are
// dropped, that never fails the run.
type Preview struct {
	addr        string
	upgrader    websocket.Upgrader
	server      *http.Server
	listener    net.Listener
	broadcaster process.Process
	frames      chan []byte

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	latest  []byte
}

func NewPreview(addr string) *Preview {
	p := Preview{
		addr:    addr,
		clients: map[*websocket.Conn]struct{}{},
		frames:  make(chan []byte, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", p.servePage)
	mux.HandleFunc("/stream", p.serveStream)
	p.server = &http.Server{Handler: mux}
	return &p
}

// Start begins listening. Frames delivered before any client connects
// are simply not sent anywhere.
func (p *Preview) Start() error {
	l, err := net.Listen("tcp", p.addr)
	if err != nil {
		return xerror.Errorf("unable to listen for preview clients on [%s]: %w", p.addr, err)
	}
	p.listener = l
	go func() {
		if err := p.server.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Error("Preview server stopped: %v", err)
		}
	}()

	p.broadcaster = process.New(process.Settings{
		WaitForShutdownMsg: "Stopping preview broadcaster...",
		Process: func(ctx context.Context) []chan struct{} {
			done := make(chan struct{})
			go p.broadcast(ctx, done)
			return []chan struct{}{done}
		},
	})
	p.broadcaster.Start()

	log.Info("Serving frame preview on http://%s", l.Addr())
	return nil
}

func (p *Preview) broadcast(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-p.frames:
			p.send(data)
		}
	}
}

func (p *Preview) send(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for conn := range p.clients {
		conn.SetWriteDeadline(time.Now().Add(previewWriteWait)) //nolint
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			log.Debug("Dropping preview client [%s]: %v", conn.RemoteAddr(), err)
			delete(p.clients, conn)
			conn.Close()
		}
	}
}

// Addr is the address actually listened on.
func (p *Preview) Addr() string {
	if p.listener == nil {
		return p.addr
	}
	return p.listener.Addr().String()
}

func (p *Preview) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(previewPage)) //nolint
}

func (p *Preview) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Unable to upgrade preview client [%s]: %v", r.RemoteAddr, err)
		return
	}

	p.mu.Lock()
	p.clients[conn] = struct{}{}
	p.mu.Unlock()
	log.Debug("Preview client connected [%s]", r.RemoteAddr)

	// clients never send anything, reading only notices them leave
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				p.drop(conn)
				return
			}
		}
	}()
}

func (p *Preview) drop(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[conn]; ok {
		delete(p.clients, conn)
		conn.Close()
	}
}

func (p *Preview) Display(buf *frame.Buffer) error {
	var b bytes.Buffer
	if err := jpeg.Encode(&b, buf.Image(), &jpeg.Options{Quality: previewQuality}); err != nil {
		return xerror.Errorf("unable to encode preview frame: %w", err)
	}
	p.mu.Lock()
	p.latest = b.Bytes()
	p.mu.Unlock()
	return nil
}

// Flush hands the encoded frame to the broadcaster. A frame arriving
// while the previous one is still being sent is skipped.
func (p *Preview) Flush() error {
	p.mu.Lock()
	data := p.latest
	p.mu.Unlock()

	select {
	case p.frames <- data:
	default:
		log.Debug("Preview broadcaster busy, skipping frame")
	}
	return nil
}

// Clients reports how many browsers are currently connected.
func (p *Preview) Clients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func (p *Preview) Close() error {
	if p.broadcaster != nil {
		p.broadcaster.Stop()
		p.broadcaster.Wait()
		p.broadcaster = nil
	}

	p.mu.Lock()
	for conn := range p.clients {
		conn.Close()
		delete(p.clients, conn)
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.server.Shutdown(ctx)
}
