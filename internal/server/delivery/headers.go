package delivery

import (
	"encoding/hex"
	"mime"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/satellite/internal/server/glob"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// encodingPreference is the order in which stored encodings are offered.
var encodingPreference = []string{
	models.EncodingBrotli,
	models.EncodingGzip,
	models.EncodingDeflate,
	models.EncodingCompress,
	models.EncodingIdentity,
}

// header returns the value of the first header named name.
func header(headers []models.HeaderField, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// acceptedEncodings parses an Accept-Encoding value. Entries with q=0 are
// refused; "*" accepts everything not refused.
func acceptedEncodings(v string) (accepted map[string]bool, wildcard bool) {
	accepted = map[string]bool{}
	for _, part := range strings.Split(v, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		name := strings.ToLower(strings.TrimSpace(fields[0]))
		if name == "" {
			continue
		}
		ok := true
		for _, p := range fields[1:] {
			p = strings.TrimSpace(p)
			if q, found := strings.CutPrefix(p, "q="); found {
				if f, err := strconv.ParseFloat(q, 64); err == nil && f == 0 {
					ok = false
				}
			}
		}
		if name == "*" {
			wildcard = ok
			continue
		}
		accepted[name] = ok
	}
	return accepted, wildcard
}

// chooseEncoding picks the preferred stored encoding the client accepts,
// falling back to identity and then to the most preferred stored one.
func chooseEncoding(a *models.Asset, acceptEncoding string) (string, models.AssetEncoding, bool) {
	accepted, wildcard := acceptedEncodings(acceptEncoding)
	for _, name := range encodingPreference {
		enc, stored := a.Encodings[name]
		if !stored {
			continue
		}
		ok, listed := accepted[name]
		if (listed && ok) || (!listed && wildcard) {
			return name, enc, true
		}
	}
	if enc, ok := a.Encodings[models.EncodingIdentity]; ok {
		return models.EncodingIdentity, enc, true
	}
	for _, name := range encodingPreference {
		if enc, ok := a.Encodings[name]; ok {
			return name, enc, true
		}
	}
	return "", models.AssetEncoding{}, false
}

// contentType guesses the media type from the asset path.
func contentType(fullPath string) string {
	if t := mime.TypeByExtension(path.Ext(fullPath)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ETag is the strong entity tag of an encoding.
func ETag(enc models.AssetEncoding) string {
	return `"` + hex.EncodeToString(enc.Sha256[:]) + `"`
}

func iframeHeader(o models.IframeOption) (string, bool) {
	switch o {
	case models.IframeDeny:
		return "DENY", true
	case models.IframeSameOrigin:
		return "SAMEORIGIN", true
	case models.IframeAllowAny:
		return "", false
	}
	return "DENY", true
}

// headerSet collects headers keyed by lower-case name; later writes win.
type headerSet map[string]models.HeaderField

func (h headerSet) set(name, value string) {
	h[strings.ToLower(name)] = models.HeaderField{Name: name, Value: value}
}

func (h headerSet) setDefault(name, value string) {
	if _, ok := h[strings.ToLower(name)]; !ok {
		h.set(name, value)
	}
}

func (h headerSet) sorted() []models.HeaderField {
	out := make([]models.HeaderField, 0, len(h))
	for _, f := range h {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// responseHeaders assembles the deterministic header list of a served
// encoding. reqPath selects the configured headers.
func responseHeaders(cfg *models.StorageConfig, reqPath string, a *models.Asset, encoding string, enc models.AssetEncoding) ([]models.HeaderField, error) {
	h := headerSet{}
	if len(cfg.Headers) > 0 {
		set, err := glob.NewSet(keys(cfg.Headers))
		if err != nil {
			return nil, err
		}
		for _, src := range set.All(reqPath) {
			for _, f := range cfg.Headers[src] {
				h.set(f.Name, f.Value)
			}
		}
	}
	for _, f := range a.Headers {
		h.set(f.Name, f.Value)
	}
	h.setDefault("Content-Type", contentType(a.Key.FullPath))
	if encoding != models.EncodingIdentity {
		h.set("Content-Encoding", encoding)
	}
	h.set("ETag", ETag(enc))
	if v, ok := iframeHeader(cfg.Iframe); ok {
		h.set("X-Frame-Options", v)
	}
	return h.sorted(), nil
}
