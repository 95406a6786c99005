package probe

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"time"
)

// Minimal STUN binding client: enough of RFC 5389 to read the
// XOR-MAPPED-ADDRESS a server reflects back. Used to corroborate the
// browser-reported public IP from outside the browser, which catches
// proxy-only tunnels where page and OS traffic exit differently.

const (
	stunBindingRequest  uint16 = 0x0001
	stunBindingResponse uint16 = 0x0101
	stunMagicCookie     uint32 = 0x2112A442

	stunAttrXORMappedAddress uint16 = 0x0020
)

// DefaultStunServers mirror the STUN endpoint the in-page probe uses.
var DefaultStunServers = []string{
	"stun.l.google.com:19302",
	"stun1.l.google.com:19302",
}

// StunObservedIPs returns the distinct public addresses observed through
// STUN binding requests to the given servers. A server that cannot be
// reached or answers garbage is skipped; no reachable server means an empty
// result, never an error.
func StunObservedIPs(ctx context.Context, servers []string) []string {
	var out []string
	seen := make(map[string]struct{})

	dialer := net.Dialer{Timeout: 5 * time.Second}

	for _, server := range servers {
		if server == "" || ctx.Err() != nil {
			continue
		}
		addr, err := stunBindingRoundTrip(ctx, &dialer, server)
		if err != nil {
			slog.Debug("stun binding failed", "server", server, "error", err)
			continue
		}
		ip := addr.String()
		if _, dup := seen[ip]; !dup {
			seen[ip] = struct{}{}
			out = append(out, ip)
		}
	}
	return out
}

func stunBindingRoundTrip(ctx context.Context, dialer *net.Dialer, server string) (netip.Addr, error) {
	conn, err := dialer.DialContext(ctx, "udp", server)
	if err != nil {
		return netip.Addr{}, err
	}
	defer conn.Close()

	var txid [12]byte
	if _, err := rand.Read(txid[:]); err != nil {
		return netip.Addr{}, err
	}

	// 20-byte header, no attributes: type, length, cookie, transaction id.
	msg := make([]byte, 20)
	binary.BigEndian.PutUint16(msg[0:2], stunBindingRequest)
	binary.BigEndian.PutUint32(msg[4:8], stunMagicCookie)
	copy(msg[8:20], txid[:])

	if _, err := conn.Write(msg); err != nil {
		return netip.Addr{}, err
	}
	deadline := time.Now().Add(4 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, 1500)
	n, err := conn.Read(buf)
	if err != nil {
		return netip.Addr{}, err
	}
	return parseBindingResponse(buf[:n], txid)
}

func parseBindingResponse(pkt []byte, txid [12]byte) (netip.Addr, error) {
	if len(pkt) < 20 {
		return netip.Addr{}, errors.New("stun: short packet")
	}
	if binary.BigEndian.Uint16(pkt[0:2]) != stunBindingResponse {
		return netip.Addr{}, errors.New("stun: not a binding response")
	}
	if binary.BigEndian.Uint32(pkt[4:8]) != stunMagicCookie {
		return netip.Addr{}, errors.New("stun: bad magic cookie")
	}
	attrLen := int(binary.BigEndian.Uint16(pkt[2:4]))
	if 20+attrLen > len(pkt) {
		return netip.Addr{}, errors.New("stun: truncated attributes")
	}

	attrs := pkt[20 : 20+attrLen]
	for len(attrs) >= 4 {
		typ := binary.BigEndian.Uint16(attrs[0:2])
		l := int(binary.BigEndian.Uint16(attrs[2:4]))
		if 4+l > len(attrs) {
			break
		}
		if typ == stunAttrXORMappedAddress {
			return decodeXORAddress(attrs[4:4+l], txid)
		}
		// Attributes are padded to 4-byte alignment.
		adv := 4 + l
		if rem := adv % 4; rem != 0 {
			adv += 4 - rem
		}
		attrs = attrs[adv:]
	}
	return netip.Addr{}, errors.New("stun: no xor-mapped-address")
}

func decodeXORAddress(val []byte, txid [12]byte) (netip.Addr, error) {
	if len(val) < 8 {
		return netip.Addr{}, errors.New("stun: address attribute too short")
	}
	switch family := val[1]; family {
	case 0x01: // IPv4
		raw := binary.BigEndian.Uint32(val[4:8]) ^ stunMagicCookie
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], raw)
		return netip.AddrFrom4(b), nil
	case 0x02: // IPv6
		if len(val) < 20 {
			return netip.Addr{}, errors.New("stun: ipv6 attribute too short")
		}
		var b [16]byte
		for i := 0; i < 4; i++ {
			b[i] = val[4+i] ^ byte(stunMagicCookie>>(24-8*i))
		}
		for i := 0; i < 12; i++ {
			b[4+i] = val[8+i] ^ txid[i]
		}
		return netip.AddrFrom16(b), nil
	default:
		return netip.Addr{}, errors.New("stun: unsupported address family")
	}
}
