package uprotocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Resource ids recognized on a uProtocol method URI. GET/UPDATE/DELETE
// share one authority/entity/version triple and differ only here.
const (
	resourceIDResponse uint16 = 0x0000
	resourceIDGet      uint16 = 0x0001
	resourceIDUpdate   uint16 = 0x0002
	resourceIDDelete   uint16 = 0x0003
)

// uri is a parsed uProtocol URI of the form
// "//authority/entity-id/major-version/resource-id". Only resource-id is
// parsed (as hex, and re-serialized as upper-case hex without padding);
// Authority, EntityID, and MajorVersion are kept as their original text.
// Only ResourceID is substitutable.
type uri struct {
	Authority    string
	EntityID     string
	MajorVersion string
	ResourceID   uint16
}

func parseURI(raw string) (uri, error) {
	trimmed := strings.TrimPrefix(raw, "//")
	if trimmed == raw {
		return uri{}, fmt.Errorf("uprotocol: uri %q missing leading //", raw)
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) != 4 {
		return uri{}, fmt.Errorf("uprotocol: uri %q must have authority/entity/version/resource", raw)
	}

	resourceID, err := strconv.ParseUint(parts[3], 16, 16)
	if err != nil {
		return uri{}, fmt.Errorf("uprotocol: uri %q has non-hex resource id: %w", raw, err)
	}

	return uri{
		Authority:    parts[0],
		EntityID:     parts[1],
		MajorVersion: parts[2],
		ResourceID:   uint16(resourceID),
	}, nil
}

// withResourceID returns a copy of u with ResourceID replaced, preserving
// authority, entity id, and major version.
func (u uri) withResourceID(id uint16) uri {
	u.ResourceID = id
	return u
}

func (u uri) String() string {
	return fmt.Sprintf("//%s/%s/%s/%X", u.Authority, u.EntityID, u.MajorVersion, u.ResourceID)
}
