package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/mediacabinet/pkg/cache"
)

const (
	// cacheMaxBodyBytes 超过此体积的响应不进缓存.
	cacheMaxBodyBytes = 1 << 20
	cacheDefaultTTL   = 30 * time.Second
	cacheBypassHeader = "X-Cache-Bypass"
	cacheKeyGrow      = 64
)

// CacheConfig 响应缓存中间件配置.
type CacheConfig struct {
	Cache *appcache.Cache // 业务注入的缓存实例
	TTL   time.Duration

	Methods     []string // 可缓存方法，默认 GET/HEAD
	StatusCodes []int    // 可缓存状态码，默认 200

	KeyFunc     func(*gin.Context) string // 缓存键生成，默认为方法+路由+排序 query 的哈希
	Skipper     func(*gin.Context) bool   // 返回 true 跳过缓存
	VaryHeaders []string                  // 参与键计算的请求头

	// RespectCacheControl 为 true 时遵循响应的 no-store/private/max-age.
	RespectCacheControl bool
	// BypassHeader 请求带该头（任意值）时绕过缓存.
	BypassHeader string
	// MaxBodyBytes 可缓存响应体上限，0 表示不限制.
	MaxBodyBytes int
}

// DefaultCacheConfig 媒体库场景的默认配置：短 TTL、仅 GET/HEAD 200.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:               c,
		TTL:                 cacheDefaultTTL,
		Methods:             []string{http.MethodGet, http.MethodHead},
		StatusCodes:         []int{http.StatusOK},
		BypassHeader:        cacheBypassHeader,
		MaxBodyBytes:        cacheMaxBodyBytes,
		RespectCacheControl: true,
	}
}

// CacheMiddleware 把命中条件内的响应整体写入 KV 缓存.
// 支持 ETag/If-None-Match 304、X-Cache 命中标记与 Age 头；缓存读写失败时
// 静默放行，不影响主流程.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: nil cache")
	}

	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{http.MethodGet, http.MethodHead}
	}

	if len(cfg.StatusCodes) == 0 {
		cfg.StatusCodes = []int{http.StatusOK}
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return cacheKey(c, cfg.VaryHeaders) }
	}

	if cfg.BypassHeader == "" {
		cfg.BypassHeader = cacheBypassHeader
	}

	methods := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = struct{}{}
	}

	statuses := make(map[int]struct{}, len(cfg.StatusCodes))
	for _, s := range cfg.StatusCodes {
		statuses[s] = struct{}{}
	}

	return func(c *gin.Context) {
		if skipCache(c, cfg, methods) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		if replayCached(c, cfg, key) {
			return
		}

		w := &cachedBodyWriter{ResponseWriter: c.Writer, max: cfg.MaxBodyBytes}
		c.Writer = w
		c.Next()
		storeResponse(c, cfg, key, w, statuses)
	}
}

// cachedResponse 缓存条目的序列化形态.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"` // unix 纳秒，用于计算 Age
}

// cacheKey 由方法、匹配路由、排序后的 query 与 Vary 头拼接后取 xxhash.
func cacheKey(c *gin.Context, vary []string) string {
	var b strings.Builder

	b.Grow(cacheKeyGrow)
	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}

	b.WriteString(path)

	if q := c.Request.URL.Query(); len(q) > 0 {
		names := make([]string, 0, len(q))
		for name := range q {
			names = append(names, name)
		}

		sort.Strings(names)
		b.WriteByte('?')

		for i, name := range names {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[name], ","))
		}
	}

	if len(vary) > 0 {
		sort.Strings(vary)
		b.WriteString("|v=")

		for i, h := range vary {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(h)
			b.WriteByte('=')
			b.WriteString(c.GetHeader(h))
		}
	}

	return fmt.Sprintf("mc:resp:%x", xxhash.Sum64String(b.String()))
}

func skipCache(c *gin.Context, cfg CacheConfig, methods map[string]struct{}) bool {
	if cfg.Skipper != nil && cfg.Skipper(c) {
		return true
	}

	if _, ok := methods[c.Request.Method]; !ok {
		return true
	}

	return c.GetHeader(cfg.BypassHeader) != ""
}

// replayCached 命中缓存时回放响应并返回 true.
func replayCached(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for name, v := range entry.Header {
		h.Set(name, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

// cachedBodyWriter 捕获响应体，超限则放弃缓存但照常写出.
type cachedBodyWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

func (w *cachedBodyWriter) Write(b []byte) (int, error) {
	if !w.truncated {
		if w.max > 0 && w.buf.Len()+len(b) > w.max {
			w.truncated = true
		} else {
			w.buf.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}

// cacheControlTTL 解析 Cache-Control，返回覆写 TTL 与是否允许缓存.
func cacheControlTTL(h http.Header) (time.Duration, bool) {
	cc := strings.ToLower(h.Get("Cache-Control"))
	if cc == "" {
		return 0, true
	}

	if strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
		return 0, false
	}

	if idx := strings.Index(cc, "max-age="); idx >= 0 {
		part := cc[idx+len("max-age="):]
		if comma := strings.Index(part, ","); comma >= 0 {
			part = part[:comma]
		}

		if d, err := time.ParseDuration(strings.TrimSpace(part) + "s"); err == nil && d > 0 {
			return d, true
		}
	}

	return 0, true
}

func storeResponse(c *gin.Context, cfg CacheConfig, key string, w *cachedBodyWriter, statuses map[int]struct{}) {
	status := c.Writer.Status()
	if _, ok := statuses[status]; !ok || w.truncated {
		return
	}

	ttl := cfg.TTL

	if cfg.RespectCacheControl {
		override, cacheable := cacheControlTTL(c.Writer.Header())
		if !cacheable {
			return
		}

		if override > 0 {
			ttl = override
		}
	}

	if ttl <= 0 {
		return
	}

	body := w.buf.Bytes()

	hdr := make(map[string]string, len(c.Writer.Header()))
	for name, v := range c.Writer.Header() {
		if len(v) > 0 {
			hdr[name] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("\"%x\"", xxhash.Sum64(body))
		c.Writer.Header().Set("ETag", etag)
		hdr["ETag"] = etag
	}

	entry := cachedResponse{Status: status, Header: hdr, Body: body, ETag: etag, StoredAt: time.Now().UnixNano()}

	// 异步写缓存，失败只影响下次命中
	go func(ctx context.Context, k string, e cachedResponse, ttl time.Duration) {
		_ = appcache.Set(ctx, cfg.Cache, k, e, ttl)
	}(context.WithoutCancel(c.Request.Context()), key, entry, ttl)

	c.Writer.Header().Set("X-Cache", "MISS")
}
