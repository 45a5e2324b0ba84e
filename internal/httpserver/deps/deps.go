package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curioapp/curio/internal/curation"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/sources/catalog"
	"github.com/curioapp/curio/internal/store"
)

type Deps struct {
	Logger               logger.Logger
	StartTime            time.Time
	Version              string
	Commit               string
	BuildDate            string
	GoVersion            string
	TimeNow              func() time.Time    // for testing, defaults to time.Now
	RequestTimeout       time.Duration       // per-request deadline for non-streaming routes
	AllowedOrigins       []string            // Origins allowed by CORS
	AllowedHosts         []string            // Host headers allowed to access the server
	AllowedCIDRS         []string            // IPs allowed to access infra endpoints
	TrustProxy           bool                // true if running behind a trusted reverse proxy
	RedisClient          *redis.Client       // nil when running on the in-memory store
	Store                store.Store         // persistence for bookmarks, collections, results
	Sessions             *session.Manager    // chat session lifecycle and dispatch
	Curation             *curation.Service   // direct bookmark/collection edits
	Normalizer           *catalog.Normalizer // raw product normalization at the API boundary
	ProfileReloadTrigger chan struct{}       // trigger manual origin-profile reload (nil if disabled)
}
