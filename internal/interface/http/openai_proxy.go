package http

import (
	"bytes"
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/epilog/epilog-api/internal/infra/config"
)

const proxyBodyLimit = 4 << 20 // 4 MiB

// OpenAIProxy forwards a narrow slice of the OpenAI API so clients without
// their own key can call it through this service. Access is gated by a
// shared token; the upstream key never leaves the server.
type OpenAIProxy struct {
	cfg        config.ProxyConfig
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIProxy constructs the proxy, or returns nil when disabled.
func NewOpenAIProxy(cfg config.ProxyConfig, apiKey string, logger *slog.Logger) *OpenAIProxy {
	if !cfg.Enabled {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIProxy{
		cfg:    cfg,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "http.openai_proxy"),
	}
}

// Health reports proxy readiness without touching the upstream.
func (p *OpenAIProxy) Health(c *gin.Context) {
	c.Header("x-openai-proxy", "1")
	c.JSON(http.StatusOK, gin.H{"status": "ok", "upstream": p.cfg.UpstreamURL})
}

// Responses forwards one request to the upstream responses endpoint.
func (p *OpenAIProxy) Responses(c *gin.Context) {
	if !p.authorized(c) {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "proxy_unauthorized", "invalid proxy token", nil))
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, proxyBodyLimit))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "read request body failed", err))
		return
	}

	upstream := strings.TrimRight(p.cfg.UpstreamURL, "/") + "/v1/responses"
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, upstream, bytes.NewReader(body))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "proxy_failed", "build upstream request failed", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("upstream request failed", "error", err)
		abortWithError(c, NewHTTPError(http.StatusBadGateway, "proxy_failed", "upstream request failed", err))
		return
	}
	defer resp.Body.Close()

	c.Header("x-openai-proxy", "1")
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}

func (p *OpenAIProxy) authorized(c *gin.Context) bool {
	token := c.GetHeader("x-proxy-token")
	if token == "" || p.cfg.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(p.cfg.Token)) == 1
}
