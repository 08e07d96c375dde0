package cache

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/DRSN-tech/fashion-search/pkg/e"
)

// Call описывает вызов функции для построения ключа кэша.
type Call struct {
	Func   string
	Args   []any
	Kwargs map[string]any
}

// NewCall создаёт описание вызова с позиционными аргументами.
func NewCall(fn string, args ...any) Call {
	return Call{Func: fn, Args: args}
}

// Fingerprint возвращает MD5 (hex) канонической JSON-формы вызова.
// Ключи объектов сортируются на любой глубине, поэтому одинаковые по смыслу
// вызовы с другим порядком именованных аргументов дают один ключ.
// Это ключ мемоизации, а не граница безопасности.
func Fingerprint(call Call) (string, error) {
	const op = "cache.Fingerprint"

	args := call.Args
	if args == nil {
		args = []any{}
	}
	kwargs := call.Kwargs
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	data, err := canonicalJSON(map[string]any{
		"func":   call.Func,
		"args":   args,
		"kwargs": kwargs,
	})
	if err != nil {
		return "", e.Wrap(op, err)
	}

	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON сериализует значение так, что все объекты (включая структуры)
// превращаются в map с отсортированными ключами.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
