package ginko

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// The program is an Anchor program: every instruction payload starts with an
// 8-byte discriminator derived from the instruction's snake_case name, and
// every account starts with one derived from the account's type name. The
// discriminators are derived here rather than copied from the IDL so the wire
// naming cannot drift from the logical naming.

func instructionDiscriminator(name string) [8]byte {
	return discriminator("global:" + name)
}

func accountDiscriminator(name string) [8]byte {
	return discriminator("account:" + name)
}

func discriminator(preimage string) [8]byte {
	hash := sha256.Sum256([]byte(preimage))
	var out [8]byte
	copy(out[:], hash[:8])
	return out
}

// encodeInstructionData Borsh-encodes the discriminator for name followed by
// each argument in order. Optional fields are declared with `bin:"optional"`
// tags on the argument structs; nil encodes as Borsh None, preserving the
// "no change" / "absent" distinction on the wire.
func encodeInstructionData(name string, args ...interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	disc := instructionDiscriminator(name)
	buf.Write(disc[:])

	enc := bin.NewBorshEncoder(buf)
	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("%w: encode %s args: %v", ErrEncoding, name, err)
		}
	}
	return buf.Bytes(), nil
}
