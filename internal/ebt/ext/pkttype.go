package ext

import (
	"strconv"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const optPktType = 0

// Link layer packet classes, as in linux/if_packet.h.
var pktTypes = []string{"host", "broadcast", "multicast", "otherhost", "outgoing"}

// nftPktTypes are the symbolic pkttype values nft understands.
var nftPktTypes = []string{"host", "broadcast", "multicast", "other"}

type matchPktType struct {
	set    bool
	typ    uint8
	invert bool
}

func newPktType(ebt.Env) ebt.Extension { return &matchPktType{} }

func (m *matchPktType) Name() string   { return "pkttype" }
func (m *matchPktType) Kind() ebt.Kind { return ebt.KindMatch }

func (m *matchPktType) Options() []getopt.Option {
	return []getopt.Option{opt("pkttype-type", getopt.RequiredArgument, optPktType)}
}

func (m *matchPktType) Parse(id int, arg string, invert bool) (bool, error) {
	if id != optPktType {
		return false, nil
	}
	if m.set {
		return false, ebt.Errorf("Multiple use of same option not allowed")
	}
	m.set = true
	m.invert = invert

	for i, name := range pktTypes {
		if name == arg {
			m.typ = uint8(i)
			return true, nil
		}
	}
	v, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return false, ebt.Errorf("Problem with specified pkttype '%s'", arg)
	}
	m.typ = uint8(v)
	return true, nil
}

func (m *matchPktType) Finalize() error { return nil }

func (m *matchPktType) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("meta pkttype %s", xlate.Invert(m.invert))
	if int(m.typ) < len(nftPktTypes) {
		b.Add("%s ", nftPktTypes[m.typ])
	} else {
		b.Add("%d ", m.typ)
	}
	return true
}
