package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const reconnectDelay = time.Second

// Client — Binance spot: websocket-стрим свечей и REST-цены.
type Client struct {
	log *zap.Logger

	http     *http.Client
	wsDialer *websocket.Dialer
	wsURL    string
	restURL  string

	reconnectDelay time.Duration
}

func NewClient(wsURL, restURL string, log *zap.Logger) *Client {
	return &Client{
		log:            log.Named("binance"),
		http:           &http.Client{Timeout: 10 * time.Second},
		wsDialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		wsURL:          strings.TrimRight(wsURL, "/"),
		restURL:        strings.TrimRight(restURL, "/"),
		reconnectDelay: reconnectDelay,
	}
}
