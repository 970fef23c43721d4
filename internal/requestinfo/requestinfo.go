//
//  internal/requestinfo/requestinfo.go
//
//  Per-request client metadata: a user-agent fingerprint and a best-effort
//  location for the client address.  The values are inert, so they are safe
//  to log and to hand to templates.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA holds the parsed user-agent attributes shown in logs and templates.
type UA struct {
	Raw       string
	Browser   string // "Chrome", "Firefox", ...
	Version   string // "125.0.6422"
	OS        string
	OSVersion string
	Device    string // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot     bool
	Lang      string // first Accept-Language tag, lower-cased
}

// Geo is empty unless a GeoLite2 database was opened with InitGeo.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// Info is stored in the request context by Enrich.
type Info struct {
	UA        UA
	Geo       Geo
	Path      string
	Timestamp time.Time
}

var (
	geoMu     sync.RWMutex
	geoReader *geoip2.Reader
)

// InitGeo opens the GeoLite2-City database.  An empty path disables
// lookups; the previous reader, if any, is closed.
func InitGeo(dbPath string) error {
	var rd *geoip2.Reader
	if dbPath != "" {
		var err error
		if rd, err = geoip2.Open(dbPath); err != nil {
			return fmt.Errorf("requestinfo: open geo db: %w", err)
		}
	}
	geoMu.Lock()
	old := geoReader
	geoReader = rd
	geoMu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

type ctxKey struct{}

// WithContext stores info in ctx.
func WithContext(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the Info stored by Enrich, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// ParseUA converts a raw User-Agent header plus Accept-Language into UA.
func ParseUA(raw, acceptLang string) UA {
	u := surfer.Parse(raw)

	out := UA{
		Raw:       raw,
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionString(u.OS.Version),
		IsBot:     u.IsBot(),
		Lang:      primaryLang(acceptLang),
	}
	switch u.DeviceType {
	case surfer.DeviceComputer:
		out.Device = "Desktop"
	case surfer.DeviceTablet:
		out.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionString renders 17.0.0 as "17", 17.3.0 as "17.3", and keeps the
// patch level only when it is set.
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}

func primaryLang(al string) string {
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}

// LookupGeo returns the best-effort location of ip.
func LookupGeo(ip net.IP) Geo {
	geoMu.RLock()
	rd := geoReader
	geoMu.RUnlock()

	g := Geo{IP: ip}
	if rd == nil || ip == nil {
		return g
	}
	rec, err := rd.City(ip)
	if err != nil {
		return g
	}
	g.CountryISO = rec.Country.IsoCode
	g.City = rec.City.Names["en"]
	return g
}
