package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeBrokerTXT creates TXT records for a broker advertisement.
func EncodeBrokerTXT(info *BrokerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyVersion] = info.Version

	// Optional fields
	if info.MaxPayload > 0 {
		txt[TXTKeyMaxPayload] = strconv.Itoa(info.MaxPayload)
	}
	if info.Cluster != "" {
		txt[TXTKeyCluster] = info.Cluster
	}
	if info.RequiresAuth {
		txt[TXTKeyAuth] = "1"
	}

	return txt
}

// DecodeBrokerTXT parses TXT records from a broker advertisement.
func DecodeBrokerTXT(txt TXTRecordMap) (*BrokerInfo, error) {
	info := &BrokerInfo{}

	// Parse version (required)
	var ok bool
	info.Version, ok = txt[TXTKeyVersion]
	if !ok || info.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	// Optional fields
	if mpStr, ok := txt[TXTKeyMaxPayload]; ok {
		mp, err := strconv.Atoi(mpStr)
		if err != nil || mp < 0 {
			return nil, fmt.Errorf("%w: invalid max payload %q", ErrInvalidTXTRecord, mpStr)
		}
		info.MaxPayload = mp
	}
	info.Cluster = txt[TXTKeyCluster]
	info.RequiresAuth = txt[TXTKeyAuth] == "1"

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameInvalid)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: %d > %d characters", ErrInstanceNameInvalid, len(name), MaxInstanceNameLen)
	}
	return nil
}

// joinHostPort formats a dial target, bracketing IPv6 literals.
func joinHostPort(host string, port uint16) string {
	return net.JoinHostPort(strings.TrimSuffix(host, "."), strconv.Itoa(int(port)))
}
