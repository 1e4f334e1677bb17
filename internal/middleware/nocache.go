package middleware

import (
	"transient-cache-api/internal/nocache"

	"github.com/gin-gonic/gin"
)

const policyKey = "nocache_policy"

// NoCache attaches a fresh nocache.Policy to every request and prevents
// caching of the response.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PolicyFrom(c)
		p.Prevent()
		p.Apply(c.Writer.Header())
		c.Next()
	}
}

// PolicyFrom returns the request's policy, attaching one if needed.
func PolicyFrom(c *gin.Context) *nocache.Policy {
	if v, ok := c.Get(policyKey); ok {
		if p, ok := v.(*nocache.Policy); ok {
			return p
		}
	}
	p := nocache.New()
	c.Set(policyKey, p)
	return p
}

// Prevent marks the current response as not cacheable. Handlers outside a
// NoCache group call this before writing the body.
func Prevent(c *gin.Context) {
	p := PolicyFrom(c)
	p.Prevent()
	p.Apply(c.Writer.Header())
}
