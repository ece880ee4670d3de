package dotxch

import (
	"fmt"
	"github.com/everFinance/dotxch/schema"
	"regexp"
	"strings"
)

var labelRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,63}$`)

// ProcessDomainName lower-cases name and adds the .xch suffix when it is missing.
func ProcessDomainName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	label := strings.TrimSuffix(name, schema.DomainSuffix)
	if !labelRegexp.MatchString(label) {
		return "", fmt.Errorf("%w: %q", schema.ErrInvalidDomainName, name)
	}
	return label + schema.DomainSuffix, nil
}
