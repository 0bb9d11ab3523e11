package animals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxMetadataBytes es el tamaño máximo del texto serializado (columna metadata_json).
const MaxMetadataBytes = 1000

// Metadata es un payload clave-valor opaco para el dominio.
// Se persiste como texto JSON (objeto) y se parsea de vuelta al leer.
// Los números se conservan como json.Number para no perder precisión en el round-trip.
type Metadata map[string]any

// Encode serializa a texto. nil => "" (se guarda NULL); un objeto vacío se guarda "{}".
func (m Metadata) Encode() (string, error) {
	if m == nil {
		return "", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if len(b) > MaxMetadataBytes {
		return "", invalid("metadata", fmt.Sprintf("serialized metadata exceeds %d bytes", MaxMetadataBytes))
	}
	return string(b), nil
}

// ParseMetadata es el inverso de Encode. Texto vacío o null => nil; "{}" => Metadata{}.
func ParseMetadata(s string) (Metadata, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, invalid("metadata", "must be a JSON object")
	}
	if out == nil {
		return nil, nil
	}
	return Metadata(out), nil
}
