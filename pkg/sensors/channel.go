package sensors

import "fmt"

// ProximityChannel identifies one of the six fixed IR sensor placements
// around the chassis.
type ProximityChannel int

const (
	IRCenter ProximityChannel = iota
	IRRight
	IRLeft
	IRCenterRight
	IRCenterLeft
	IRBack

	// NumProximityChannels is the size of the proximity sensor suite.
	NumProximityChannels = 6
)

// String returns the wire-friendly lowercase name of the channel.
func (c ProximityChannel) String() string {
	switch c {
	case IRCenter:
		return "center"
	case IRRight:
		return "right"
	case IRLeft:
		return "left"
	case IRCenterRight:
		return "cright"
	case IRCenterLeft:
		return "cleft"
	case IRBack:
		return "back"
	default:
		return fmt.Sprintf("ProximityChannel(%d)", int(c))
	}
}

// ParseProximityChannel maps a channel name (as used in config files and
// wire topics) back to its ProximityChannel.
func ParseProximityChannel(name string) (ProximityChannel, error) {
	switch name {
	case "center":
		return IRCenter, nil
	case "right":
		return IRRight, nil
	case "left":
		return IRLeft, nil
	case "cright":
		return IRCenterRight, nil
	case "cleft":
		return IRCenterLeft, nil
	case "back":
		return IRBack, nil
	}
	return 0, fmt.Errorf("unknown proximity channel: %q", name)
}

// EncoderChannel identifies one of the four wheel encoders, one per
// H-bridge output.
type EncoderChannel int

const (
	EncoderLL EncoderChannel = iota
	EncoderLR
	EncoderRL
	EncoderRR

	// NumEncoderChannels is the number of wheel encoders.
	NumEncoderChannels = 4
)

// String returns the wire-friendly name of the encoder channel.
func (c EncoderChannel) String() string {
	switch c {
	case EncoderLL:
		return "LL"
	case EncoderLR:
		return "LR"
	case EncoderRL:
		return "RL"
	case EncoderRR:
		return "RR"
	default:
		return fmt.Sprintf("EncoderChannel(%d)", int(c))
	}
}

// ParseEncoderChannel maps an encoder name back to its EncoderChannel.
func ParseEncoderChannel(name string) (EncoderChannel, error) {
	switch name {
	case "LL":
		return EncoderLL, nil
	case "LR":
		return EncoderLR, nil
	case "RL":
		return EncoderRL, nil
	case "RR":
		return EncoderRR, nil
	}
	return 0, fmt.Errorf("unknown encoder channel: %q", name)
}
