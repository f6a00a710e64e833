package archive

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/fragscan/format"
)

// Metadata is the descriptive block stored after the blob index.
type Metadata struct {
	Run           string             `cbor:"1,keyasint"`
	Platform      string             `cbor:"2,keyasint,omitempty"`
	Kind          format.ArchiveKind `cbor:"3,keyasint"`
	RowCount      uint64             `cbor:"4,keyasint"`
	BaseCount     uint64             `cbor:"5,keyasint"`
	FragmentCount uint64             `cbor:"6,keyasint"`
	BlobCount     uint32             `cbor:"7,keyasint"`
}

var (
	metaEncMode cbor.EncMode
	metaDecMode cbor.DecMode
)

func init() {
	var err error

	// deterministic output so identical inputs produce identical archives
	metaEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("archive: CBOR encoder initialization failed: " + err.Error())
	}

	metaDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("archive: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeMetadata(m Metadata) ([]byte, error) {
	return metaEncMode.Marshal(m)
}

func decodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	err := metaDecMode.Unmarshal(data, &m)

	return m, err
}
