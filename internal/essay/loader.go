package essay

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/giantswarm/essay-feedback/internal/apperror"
)

// LoadBatch reads a JSON array of records from path.
func LoadBatch(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Wrap(apperror.KindFile, err, "O arquivo '%s' não foi encontrado", path)
		}
		return nil, apperror.Wrap(apperror.KindFile, err, "Não foi possível ler o arquivo '%s'", path)
	}
	return ParseBatch(data, path)
}

// ParseBatch decodes a batch. name identifies the source in error messages.
func ParseBatch(data []byte, name string) (Batch, error) {
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, apperror.Wrap(apperror.KindParse, err, "O conteúdo do arquivo '%s' não é um JSON válido", name)
		}
		return nil, apperror.Wrap(apperror.KindValidation, err, "O arquivo '%s' não contém uma lista de redações", name)
	}

	if len(batch) == 0 {
		return nil, apperror.New(apperror.KindValidation, "O arquivo não contém redações válidas")
	}

	return batch, nil
}

// Select returns the record at the 1-based index. The returned record
// aliases the batch entry.
func (b Batch) Select(index int) (*Record, error) {
	if index < 1 || index > len(b) {
		return nil, apperror.New(apperror.KindValidation,
			"Número da redação %d fora do intervalo 1 a %d", index, len(b))
	}
	return &b[index-1], nil
}
