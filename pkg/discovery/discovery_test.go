package discovery

import (
	"errors"
	"strings"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

func TestEncodeBrokerTXT(t *testing.T) {
	info := &BrokerInfo{
		Version:      "1",
		MaxPayload:   1 << 20,
		Cluster:      "lab",
		RequiresAuth: true,
	}

	txt := EncodeBrokerTXT(info)
	if txt[TXTKeyVersion] != "1" {
		t.Errorf("version = %q, want %q", txt[TXTKeyVersion], "1")
	}
	if txt[TXTKeyMaxPayload] != "1048576" {
		t.Errorf("max payload = %q, want %q", txt[TXTKeyMaxPayload], "1048576")
	}
	if txt[TXTKeyCluster] != "lab" {
		t.Errorf("cluster = %q, want %q", txt[TXTKeyCluster], "lab")
	}
	if txt[TXTKeyAuth] != "1" {
		t.Errorf("auth = %q, want %q", txt[TXTKeyAuth], "1")
	}
}

func TestEncodeBrokerTXTOmitsOptional(t *testing.T) {
	txt := EncodeBrokerTXT(&BrokerInfo{Version: "1"})

	if len(txt) != 1 {
		t.Errorf("expected only the version record, got %v", txt)
	}
}

func TestDecodeBrokerTXT(t *testing.T) {
	txt := TXTRecordMap{
		TXTKeyVersion:    "1",
		TXTKeyMaxPayload: "4096",
		TXTKeyCluster:    "lab",
	}

	info, err := DecodeBrokerTXT(txt)
	if err != nil {
		t.Fatalf("DecodeBrokerTXT failed: %v", err)
	}
	if info.Version != "1" {
		t.Errorf("Version = %q, want %q", info.Version, "1")
	}
	if info.MaxPayload != 4096 {
		t.Errorf("MaxPayload = %d, want %d", info.MaxPayload, 4096)
	}
	if info.Cluster != "lab" {
		t.Errorf("Cluster = %q, want %q", info.Cluster, "lab")
	}
	if info.RequiresAuth {
		t.Error("RequiresAuth = true, want false")
	}
}

func TestDecodeBrokerTXTMissingVersion(t *testing.T) {
	_, err := DecodeBrokerTXT(TXTRecordMap{TXTKeyCluster: "lab"})
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("err = %v, want ErrMissingRequired", err)
	}
}

func TestDecodeBrokerTXTBadMaxPayload(t *testing.T) {
	for _, bad := range []string{"abc", "-1", ""} {
		_, err := DecodeBrokerTXT(TXTRecordMap{
			TXTKeyVersion:    "1",
			TXTKeyMaxPayload: bad,
		})
		if !errors.Is(err, ErrInvalidTXTRecord) {
			t.Errorf("max payload %q: err = %v, want ErrInvalidTXTRecord", bad, err)
		}
	}
}

func TestTXTRecordStringsRoundTrip(t *testing.T) {
	txt := EncodeBrokerTXT(&BrokerInfo{Version: "1", Cluster: "lab"})
	back := StringsToTXTRecords(TXTRecordsToStrings(txt))

	if len(back) != len(txt) {
		t.Fatalf("round trip changed record count: %v vs %v", back, txt)
	}
	for k, v := range txt {
		if back[k] != v {
			t.Errorf("record %q = %q after round trip, want %q", k, back[k], v)
		}
	}
}

func TestStringsToTXTRecordsFlag(t *testing.T) {
	txt := StringsToTXTRecords([]string{"flag", "k=v=x"})

	if v, ok := txt["flag"]; !ok || v != "" {
		t.Errorf("flag record = %q, %v; want empty, true", v, ok)
	}
	if txt["k"] != "v=x" {
		t.Errorf("k = %q, want %q", txt["k"], "v=x")
	}
}

func TestValidateInstanceName(t *testing.T) {
	if err := ValidateInstanceName("plume-broker-1"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateInstanceName(""); !errors.Is(err, ErrInstanceNameInvalid) {
		t.Errorf("empty name: err = %v, want ErrInstanceNameInvalid", err)
	}
	if err := ValidateInstanceName(strings.Repeat("x", MaxInstanceNameLen+1)); !errors.Is(err, ErrInstanceNameInvalid) {
		t.Errorf("long name: err = %v, want ErrInstanceNameInvalid", err)
	}
}

func TestBrokerServiceAddr(t *testing.T) {
	svc := &BrokerService{Host: "broker.local.", Port: 4222}
	if got := svc.Addr(); got != "broker.local:4222" {
		t.Errorf("Addr = %q, want %q", got, "broker.local:4222")
	}

	svc.Addresses = []string{"192.168.1.10", "fe80::1"}
	if got := svc.Addr(); got != "192.168.1.10:4222" {
		t.Errorf("Addr = %q, want %q", got, "192.168.1.10:4222")
	}

	svc = &BrokerService{Host: "b.local.", Port: 4222, Addresses: []string{"fe80::1"}}
	if got := svc.Addr(); got != "[fe80::1]:4222" {
		t.Errorf("Addr = %q, want %q", got, "[fe80::1]:4222")
	}
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses([]string{"a", "b"}, []string{"b", "c"})
	want := []string{"a", "b", "c"}
	if len(merged) != len(want) {
		t.Fatalf("merged = %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("merged[%d] = %q, want %q", i, merged[i], want[i])
		}
	}
}

func TestEntryToBrokerRejectsForeignService(t *testing.T) {
	entry := &zeroconf.ServiceEntry{Text: []string{"something=else"}}
	if svc := entryToBroker(entry); svc != nil {
		t.Errorf("expected nil for entry without version record, got %+v", svc)
	}
}
