package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"transient-cache-api/internal/cache"
	"transient-cache-api/internal/transient"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetRequest represents the request payload for storing one value
type SetRequest struct {
	Value    json.RawMessage `json:"value"`
	TTL      *int64          `json:"ttl" binding:"omitempty,gte=0"`
	Interval string          `json:"interval"`
}

// SetMultipleRequest stores several values with one shared lifetime
type SetMultipleRequest struct {
	Values   map[string]json.RawMessage `json:"values" binding:"required"`
	TTL      *int64                     `json:"ttl" binding:"omitempty,gte=0"`
	Interval string                     `json:"interval"`
}

// KeysRequest names the keys of a batch read or delete
type KeysRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

var errTTLConflict = errors.New("ttl and interval are mutually exclusive")

// lifetime picks the TTL from the ttl/interval pair of a request.
func lifetime(ttl *int64, interval string) (cache.TTL, error) {
	switch {
	case ttl != nil && interval != "":
		return nil, errTTLConflict
	case interval != "":
		return cache.ParseInterval(interval)
	case ttl != nil:
		return cache.Seconds(*ttl), nil
	}
	return nil, nil
}

// CacheHandler exposes a cache layer over HTTP.
type CacheHandler struct {
	cache *cache.Layer[json.RawMessage]
	log   *zap.Logger
}

// NewCacheHandler returns a handler over layer.
func NewCacheHandler(layer *cache.Layer[json.RawMessage], log *zap.Logger) *CacheHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CacheHandler{cache: layer, log: log}
}

// Get handles GET /api/cache/:key
func (h *CacheHandler) Get(c *gin.Context) {
	key := c.Param("key")
	value, ok := h.cache.Lookup(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// Head handles HEAD /api/cache/:key
func (h *CacheHandler) Head(c *gin.Context) {
	if !h.cache.Has(c.Param("key")) {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

// Put handles PUT /api/cache/:key
func (h *CacheHandler) Put(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	ttl, err := lifetime(req.TTL, req.Interval)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cache.Set(c.Param("key"), req.Value, ttl); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/cache/:key
func (h *CacheHandler) Delete(c *gin.Context) {
	deleted, err := h.cache.Delete(c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetMultiple handles POST /api/cache/get-multiple
func (h *CacheHandler) GetMultiple(c *gin.Context) {
	var req KeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": h.cache.GetMultiple(req.Keys, nil)})
}

// SetMultiple handles POST /api/cache/set-multiple
func (h *CacheHandler) SetMultiple(c *gin.Context) {
	var req SetMultipleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ttl, err := lifetime(req.TTL, req.Interval)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cache.SetMultiple(req.Values, ttl); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteMultiple handles POST /api/cache/delete-multiple
func (h *CacheHandler) DeleteMultiple(c *gin.Context) {
	var req KeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.cache.DeleteMultiple(req.Keys); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /api/cache
func (h *CacheHandler) Clear(c *gin.Context) {
	if err := h.cache.Clear(); err != nil {
		h.log.Error("cache clear", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "Failed to clear cache",
			"sweepFailed": errors.Is(err, cache.ErrSweepFailed),
			"indexFailed": errors.Is(err, cache.ErrIndexDeleteFailed),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Keys handles GET /api/cache
func (h *CacheHandler) Keys(c *gin.Context) {
	keys := h.cache.Keys()
	c.JSON(http.StatusOK, gin.H{
		"prefix": h.cache.Prefix(),
		"keys":   keys,
		"count":  len(keys),
	})
}

func (h *CacheHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cache.ErrInvalidTTL), errors.Is(err, transient.ErrKeyTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("cache operation", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache backend failure"})
	}
}
