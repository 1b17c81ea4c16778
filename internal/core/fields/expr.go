package fields

import "regexp"

// Shared sub-expressions. Extractors embed these into larger patterns so a
// phone or an email means the same thing everywhere.
const (
	PhoneExpr = `(?:\+\d{1,3}[ .\-]?)?(?:\(\d{3}\)|\d{3})[ .\-]?\d{3}[ .\-]?\d{4}(?:[ ]*(?:x|ext\.?)[ ]*\d{1,5})?|\+\d{1,3}(?:[ .\-]?\d{2,4}){2,4}`
	EmailExpr = `[A-Za-z0-9][A-Za-z0-9._%+\-]*@[A-Za-z0-9][A-Za-z0-9.\-]*\.[A-Za-z]{2,}`
)

var (
	PhoneRegexp = regexp.MustCompile(PhoneExpr)
	EmailRegexp = regexp.MustCompile(EmailExpr)
)
