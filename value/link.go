package value

// Link field names: a link is a Map with at least __sa_type__: "link",
// a query string, and an optional label.
const (
	linkSAType   = "__sa_type__"
	linkKindName = "link"
	linkQueryKey = "query"
	linkLabelKey = "label"
)

// Link is the decoded form of a link value.
type Link struct {
	Query string
	Label string
}

// AsLink reports whether v is structurally a link and, if so, decodes it.
func AsLink(v Value) (Link, bool) {
	m, ok := v.(*Map)
	if !ok {
		return Link{}, false
	}
	kind, ok := m.Get(linkSAType)
	if !ok {
		return Link{}, false
	}
	if s, ok := kind.(String); !ok || string(s) != linkKindName {
		return Link{}, false
	}
	q, ok := m.Get(linkQueryKey)
	if !ok {
		return Link{}, false
	}
	qs, ok := q.(String)
	if !ok {
		return Link{}, false
	}
	link := Link{Query: string(qs)}
	if l, ok := m.Get(linkLabelKey); ok {
		if ls, ok := l.(String); ok {
			link.Label = string(ls)
		}
	}
	return link, true
}
