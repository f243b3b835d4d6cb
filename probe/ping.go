package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sync/errgroup"
)

const (
	timeSliceLength = 8
	trackerLength   = len(uuid.UUID{})
	protocolICMP    = 1
)

var ipv4Proto = map[string]string{"icmp": "ip4:icmp", "udp": "udp4"}

// NewPinger returns a new Pinger and resolves the target address. Resolution
// happens exactly once; an IPv6-only target is rejected.
func NewPinger(addr string) (*Pinger, error) {
	p := &Pinger{
		Size:    timeSliceLength + trackerLength,
		Timeout: 4 * time.Second,
		TTL:     64,

		addr:     addr,
		id:       rand.Intn(math.MaxUint16),
		tracker:  uuid.New(),
		protocol: "udp",
		done:     make(chan struct{}),
		recv:     make(chan reply, 5),
	}
	return p, p.resolve()
}

// Pinger sends one ICMP echo request per Probe call and matches the reply by
// identifier, tracker UUID and sequence number.
type Pinger struct {
	// Size of the echo payload being sent. Payloads smaller than the
	// timestamp plus tracker are padded up to the minimum.
	Size int

	// Timeout bounds how long a single Probe waits for its reply.
	Timeout time.Duration

	TTL int

	addr    string
	srcAddr string
	ipaddr  *net.IPAddr

	// id and tracker uniquely identify this run's packets so replies meant
	// for other processes are ignored.
	id      int
	tracker uuid.UUID

	// protocol is "icmp" (raw socket) or "udp" (unprivileged).
	protocol string

	conn *icmp.PacketConn
	recv chan reply
	done chan struct{}
	g    errgroup.Group
}

type reply struct {
	seq int
	rtt time.Duration
}

func (p *Pinger) resolve() error {
	if len(p.addr) == 0 {
		return errors.New("addr cannot be empty")
	}
	ipaddr, err := net.ResolveIPAddr("ip", p.addr)
	if err != nil {
		return fmt.Errorf("could not resolve host %v: %w", p.addr, err)
	}
	if ipaddr.IP.To4() == nil {
		return ErrUnsupportedFamily
	}
	p.ipaddr = ipaddr

	return nil
}

// Target returns the resolved IP of the probed host.
func (p *Pinger) Target() string {
	return p.ipaddr.IP.String()
}

// SetPrivileged selects the socket type.
// false means an "unprivileged" UDP ping, true a raw ICMP socket.
// NOTE: setting to true requires super-user privileges.
func (p *Pinger) SetPrivileged(privileged bool) {
	if privileged {
		p.protocol = "icmp"
	} else {
		p.protocol = "udp"
	}
}

func (p *Pinger) SetSource(addr string) {
	p.srcAddr = addr
}

// Start opens the socket and launches the receive loop. It must be called
// once before Probe.
func (p *Pinger) Start() error {
	if p.Size < timeSliceLength+trackerLength {
		p.Size = timeSliceLength + trackerLength
	}

	conn, err := icmp.ListenPacket(ipv4Proto[p.protocol], p.srcAddr)
	if err != nil {
		return fmt.Errorf("opening %v socket: %w", p.protocol, err)
	}
	if err := conn.IPv4PacketConn().SetTTL(p.TTL); err != nil {
		conn.Close()
		return err
	}
	p.conn = conn

	p.g.Go(p.recvICMP)

	return nil
}

// Probe performs one echo round trip with the given sequence number.
func (p *Pinger) Probe(ctx context.Context, seq int) (time.Duration, error) {
	// Drain replies left over from earlier probes
	for {
		select {
		case r := <-p.recv:
			logrus.Debugf("Discarding late reply for icmp_seq=%v", r.seq)
			continue
		default:
		}
		break
	}

	if err := p.sendICMP(seq); err != nil {
		return 0, err
	}

	timeout := time.NewTimer(p.Timeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-p.done:
			return 0, ErrClosed
		case r := <-p.recv:
			if r.seq != seq&0xffff {
				// Late or duplicate reply from an earlier probe
				logrus.Debugf("Discarding reply for icmp_seq=%v while awaiting %v", r.seq, seq)
				continue
			}
			return r.rtt, nil
		case <-timeout.C:
			return 0, ErrTimeout
		}
	}
}

func (p *Pinger) Close() error {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return p.g.Wait()
}

type expBackoff struct {
	baseDelay time.Duration
	maxExp    int64
	c         int64
}

func (b *expBackoff) Get() time.Duration {
	if b.c < b.maxExp {
		b.c++
	}

	return b.baseDelay * time.Duration(rand.Int63n(1<<b.c))
}

func newExpBackoff(baseDelay time.Duration, maxExp int64) expBackoff {
	return expBackoff{baseDelay: baseDelay, maxExp: maxExp}
}

func (p *Pinger) recvICMP() error {
	// Start by waiting for 50 µs and increase to a possible maximum of ~ 100 ms.
	expBackoff := newExpBackoff(50*time.Microsecond, 11)
	delay := expBackoff.Get()

	buf := make([]byte, p.Size+28)
	for {
		select {
		case <-p.done:
			return nil
		default:
			if err := p.conn.SetReadDeadline(time.Now().Add(delay)); err != nil {
				select {
				case <-p.done:
					return nil
				default:
					return err
				}
			}
			n, _, err := p.conn.ReadFrom(buf)
			if err != nil {
				if neterr, ok := err.(*net.OpError); ok && neterr.Timeout() {
					delay = expBackoff.Get()
					continue
				}
				select {
				case <-p.done: // Close tore down the socket
					return nil
				default:
					return err
				}
			}

			r, ok := p.matchPacket(buf[:n])
			if !ok {
				continue
			}
			select {
			case <-p.done:
				return nil
			case p.recv <- r:
			}
		}
	}
}

// matchPacket decodes an incoming message and reports whether it is an echo
// reply belonging to this run.
func (p *Pinger) matchPacket(raw []byte) (reply, bool) {
	receivedAt := time.Now()

	m, err := icmp.ParseMessage(protocolICMP, raw)
	if err != nil {
		logrus.Debug("Error parsing icmp message: ", err)
		return reply{}, false
	}
	if m.Type != ipv4.ICMPTypeEchoReply {
		// Not an echo reply, ignore it
		return reply{}, false
	}

	pkt, ok := m.Body.(*icmp.Echo)
	if !ok {
		return reply{}, false
	}
	if !p.matchID(pkt.ID) {
		return reply{}, false
	}
	if len(pkt.Data) < timeSliceLength+trackerLength {
		logrus.Debugf("Insufficient data received; got: %d", len(pkt.Data))
		return reply{}, false
	}

	var packetUUID uuid.UUID
	if err := packetUUID.UnmarshalBinary(pkt.Data[timeSliceLength : timeSliceLength+trackerLength]); err != nil || packetUUID != p.tracker {
		return reply{}, false
	}

	timestamp := bytesToTime(pkt.Data[:timeSliceLength])

	return reply{seq: pkt.Seq, rtt: receivedAt.Sub(timestamp)}, true
}

// matchID reports whether the reply belongs to this run. Unprivileged UDP
// sockets rewrite the echo identifier on Linux, so the check only applies to
// raw sockets.
func (p *Pinger) matchID(id int) bool {
	if p.protocol == "icmp" {
		return id == p.id
	}
	return true
}

func (p *Pinger) sendICMP(seq int) error {
	var dst net.Addr = p.ipaddr
	if p.protocol == "udp" {
		dst = &net.UDPAddr{IP: p.ipaddr.IP, Zone: p.ipaddr.Zone}
	}

	uuidEncoded, err := p.tracker.MarshalBinary()
	if err != nil {
		return fmt.Errorf("unable to marshal UUID binary: %w", err)
	}
	t := append(timeToBytes(time.Now()), uuidEncoded...)
	if remainSize := p.Size - timeSliceLength - trackerLength; remainSize > 0 {
		t = append(t, bytes.Repeat([]byte{1}, remainSize)...)
	}

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq & 0xffff,
			Data: t,
		},
	}

	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	for {
		if _, err = p.conn.WriteTo(msgBytes, dst); err != nil {
			if neterr, ok := err.(*net.OpError); ok {
				if errors.Is(neterr.Err, syscall.ENOBUFS) {
					continue
				}
			}
		}
		break
	}

	return err
}

func bytesToTime(b []byte) time.Time {
	var nsec int64
	for i := uint8(0); i < 8; i++ {
		nsec += int64(b[i]) << ((7 - i) * 8)
	}
	return time.Unix(nsec/1000000000, nsec%1000000000)
}

func timeToBytes(t time.Time) []byte {
	nsec := t.UnixNano()
	b := make([]byte, 8)
	for i := uint8(0); i < 8; i++ {
		b[i] = byte((nsec >> ((7 - i) * 8)) & 0xff)
	}
	return b
}
