package feed

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/okian/daonpick/internal/domain/model"
)

// Header names read from the product feed, after lower-casing.
var (
	linkColumns = []string{"link", "affiliateurl", "shortlink", "longlink"} //nolint:gochecknoglobals // fixed precedence
	numberTrim  = strings.NewReplacer(",", "", "원", "", "%", "", " ", "") //nolint:gochecknoglobals // stateless
)

// Products maps rows to product records. Rows without a code are rejected;
// unparsable numbers become zero. Every problem is noted in the report.
func Products(rows []Row, policy *bluemonday.Policy) ([]model.ProductRecord, Report) {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	rep := Report{Total: len(rows)}
	out := make([]model.ProductRecord, 0, len(rows))
	for _, r := range rows {
		code := r.Get("code")
		if code == "" {
			rep.Invalid++
			rep.note(r.Line, "code", "missing code")
			continue
		}
		p := model.ProductRecord{
			Code:        code,
			Name:        plain(policy, r.Get("name")),
			Category:    r.Get("category"),
			Image:       r.Get("image"),
			Link:        r.Get(linkColumns...),
			Price:       number(&rep, r, "price"),
			Discount:    number(&rep, r, "discount"),
			Description: plain(policy, r.Get("description")),
		}
		if p.Link == "" {
			rep.note(r.Line, "link", "missing link")
		}
		rep.Valid++
		out = append(out, p)
	}
	return out, rep
}

// Settings maps rows of type, label and url. Rows without a type are rejected.
func Settings(rows []Row) ([]model.Setting, Report) {
	rep := Report{Total: len(rows)}
	out := make([]model.Setting, 0, len(rows))
	for _, r := range rows {
		s := model.Setting{
			Type:  strings.ToLower(r.Get("type")),
			Label: r.Get("label"),
			URL:   r.Get("url"),
		}
		if s.Type == "" {
			rep.Invalid++
			rep.note(r.Line, "type", "missing type")
			continue
		}
		rep.Valid++
		out = append(out, s)
	}
	return out, rep
}

func plain(policy *bluemonday.Policy, s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

func number(rep *Report, r Row, field string) int64 {
	raw := r.Get(field)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(numberTrim.Replace(raw), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(numberTrim.Replace(raw), 64)
		if ferr != nil {
			rep.note(r.Line, field, "not a number: "+raw)
			return 0
		}
		n = int64(f)
	}
	if n < 0 {
		rep.note(r.Line, field, "negative value: "+raw)
		return 0
	}
	return n
}
