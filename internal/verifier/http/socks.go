package httpverifier

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
	"h12.io/socks"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func socks5Dialer(proxyAddr string, timeout time.Duration) (dialFunc, error) {
	d, err := proxy.SOCKS5("tcp", proxyAddr, nil, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer for %s does not support contexts", proxyAddr)
	}
	return cd.DialContext, nil
}

// socks4Dialer wraps the blocking h12 dialer so the handshake is abandoned
// as soon as ctx is done. A connection established after that is closed.
func socks4Dialer(proxyAddr string, timeout time.Duration) dialFunc {
	q := url.Values{"timeout": {timeout.String()}}
	dial := socks.Dial("socks4://" + proxyAddr + "?" + q.Encode())

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type result struct {
			conn net.Conn
			err  error
		}
		ch := make(chan result, 1)
		go func() {
			conn, err := dial(network, addr)
			ch <- result{conn: conn, err: err}
		}()

		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			go func() {
				if r := <-ch; r.conn != nil {
					r.conn.Close()
				}
			}()
			return nil, ctx.Err()
		}
	}
}
