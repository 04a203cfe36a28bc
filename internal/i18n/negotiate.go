package i18n

import "golang.org/x/text/language"

// Negotiate picks the best supported locale. Explicit preferences (query
// parameter or cookie) win over the Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string, preferred ...string) string {
	var tags []language.Tag
	for _, p := range preferred {
		if p == "" {
			continue
		}
		if tag, err := language.Parse(p); err == nil {
			tags = append(tags, tag)
		}
	}
	if accepted, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		tags = append(tags, accepted...)
	}
	if len(tags) == 0 {
		return c.fallback
	}
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.fallback
	}
	return c.supported[index]
}
