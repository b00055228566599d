package cli

import (
	"fmt"

	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/spf13/pflag"
)

// listFlags binds the flags shared by list and count commands.
type listFlags struct {
	key, prefix, description string
	owner, cursor, order     string
	limit                    int
	desc                     bool
}

func (l *listFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&l.key, "key", "", "exact key")
	fs.StringVar(&l.prefix, "prefix", "", "key prefix")
	fs.StringVar(&l.description, "description", "", "description substring")
	fs.StringVar(&l.owner, "owner", "", "only records of this owner")
	fs.StringVar(&l.cursor, "cursor", "", "cursor returned by a previous page")
	fs.IntVar(&l.limit, "limit", 0, "page size, 0 for all")
	fs.StringVar(&l.order, "order-by", "", "key, created_at or updated_at")
	fs.BoolVar(&l.desc, "desc", false, "descending order")
}

func (l *listFlags) params() (models.ListParams, error) {
	p := models.ListParams{Owner: l.owner}
	if l.key != "" || l.prefix != "" || l.description != "" {
		p.Matcher = &models.ListMatcher{Key: l.key, KeyPrefix: l.prefix, Description: l.description}
	}
	if l.cursor != "" || l.limit > 0 {
		p.Paginate = &models.ListPaginate{Cursor: l.cursor, Limit: l.limit}
	}
	if l.order != "" || l.desc {
		var field models.ListOrderField
		switch l.order {
		case "", "key":
			field = models.OrderByKey
		case "created_at":
			field = models.OrderByCreatedAt
		case "updated_at":
			field = models.OrderByUpdatedAt
		default:
			return p, fmt.Errorf("unknown order %q", l.order)
		}
		p.Order = &models.ListOrder{Field: field, Desc: l.desc}
	}
	return p, nil
}

// optionalVersion returns nil when the flag was not given.
func optionalVersion(fs *pflag.FlagSet, v uint64) *uint64 {
	if fs == nil || !fs.Changed("version") {
		return nil
	}
	return &v
}
