package httpverifier

import (
	"bufio"
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/JulianoL13/proxy-list-refresher/internal/proxy"
	"github.com/armon/go-socks5"
	"github.com/stretchr/testify/require"
)

const echoBody = `{"ip":"203.0.113.7"}`

func newEchoServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(echoHandler(body))
	t.Cleanup(srv.Close)
	return srv
}

func newTLSEchoServer(t *testing.T, body string) (*httptest.Server, *tls.Config) {
	t.Helper()
	srv := httptest.NewTLSServer(echoHandler(body))
	t.Cleanup(srv.Close)
	cfg := srv.Client().Transport.(*http.Transport).TLSClientConfig.Clone()
	return srv, cfg
}

func echoHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	})
}

// newForwardProxy serves plain HTTP forwarding and CONNECT tunnels.
func newForwardProxy(t *testing.T) *httptest.Server {
	t.Helper()
	upstream := &http.Transport{DisableKeepAlives: true}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodConnect {
			tunnel(w, r)
			return
		}
		out := r.Clone(r.Context())
		out.RequestURI = ""
		resp, err := upstream.RoundTrip(out)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		for k, v := range resp.Header {
			w.Header()[k] = v
		}
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func tunnel(w http.ResponseWriter, r *http.Request) {
	dst, err := net.Dial("tcp", r.Host)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	hj, ok := w.(http.Hijacker)
	if !ok {
		dst.Close()
		http.Error(w, "hijacking not supported", http.StatusInternalServerError)
		return
	}
	src, _, err := hj.Hijack()
	if err != nil {
		dst.Close()
		return
	}
	io.WriteString(src, "HTTP/1.1 200 Connection Established\r\n\r\n")
	pipe(src, dst)
}

func pipe(a, b net.Conn) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(a, b)
		a.Close()
	}()
	go func() {
		defer wg.Done()
		io.Copy(b, a)
		b.Close()
	}()
	wg.Wait()
}

// newRawServer accepts TCP connections and hands each one to handle. Open
// connections are closed when the test ends.
func newRawServer(t *testing.T, handle func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
			go handle(conn)
		}
	}()
	return ln.Addr().String()
}

// newBlackhole accepts connections and never answers.
func newBlackhole(t *testing.T) string {
	return newRawServer(t, func(net.Conn) {})
}

func newGarbageServer(t *testing.T) string {
	return newRawServer(t, func(c net.Conn) {
		r := bufio.NewReader(c)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" {
				break
			}
		}
		io.WriteString(c, "SSH-2.0-OpenSSH_9.6\r\n")
	})
}

func newSOCKS5Server(t *testing.T) string {
	t.Helper()
	server, err := socks5.New(&socks5.Config{})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go server.Serve(ln)
	return ln.Addr().String()
}

// newSOCKS4Server speaks just enough SOCKS4 to CONNECT to an IPv4 target.
func newSOCKS4Server(t *testing.T) string {
	return newRawServer(t, func(c net.Conn) {
		defer c.Close()
		r := bufio.NewReader(c)

		var head [8]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			return
		}
		if head[0] != 4 || head[1] != 1 {
			return
		}
		if _, err := r.ReadString(0); err != nil {
			return
		}

		port := binary.BigEndian.Uint16(head[2:4])
		ip := net.IP(head[4:8])
		dst, err := net.Dial("tcp", net.JoinHostPort(ip.String(), strconv.Itoa(int(port))))
		if err != nil {
			c.Write([]byte{0, 0x5b, 0, 0, 0, 0, 0, 0})
			return
		}
		if _, err := c.Write([]byte{0, 0x5a, 0, 0, 0, 0, 0, 0}); err != nil {
			dst.Close()
			return
		}
		pipe(c, dst)
	})
}

func closedPort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func candidateAt(t *testing.T, addr string, declared proxy.Protocol) proxy.Candidate {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	n, err := strconv.Atoi(port)
	require.NoError(t, err)
	return proxy.NewCandidate(host, n, declared)
}

func hostOf(srv *httptest.Server) string {
	return srv.Listener.Addr().String()
}
