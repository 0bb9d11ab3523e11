package animals

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultGenerations = 3
	MaxGenerations     = 5
)

// PedigreeNode es un nodo del árbol de ancestros. Mother/Father nil = ausente
// o fuera de la profundidad pedida.
type PedigreeNode struct {
	ID          string
	Identifier  string
	Name        string
	Gender      Gender
	DateOfBirth *time.Time
	AnimalType  string // nombre del tipo

	Mother *PedigreeNode
	Father *PedigreeNode
}

// ClampGenerations lleva n al rango [1, MaxGenerations].
func ClampGenerations(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxGenerations {
		return MaxGenerations
	}
	return n
}

// BuildPedigree arma el árbol con raíz en id hasta generations niveles (la raíz es el nivel 1).
// Devuelve nil, nil si la raíz no existe; el Service lo traduce a NotFound.
func BuildPedigree(ctx context.Context, tx Tx, id string, generations int) (*PedigreeNode, error) {
	b := pedigreeBuilder{
		tx:        tx,
		max:       ClampGenerations(generations),
		typeNames: map[string]string{},
	}
	return b.node(ctx, id, 1)
}

type pedigreeBuilder struct {
	tx  Tx
	max int

	// nombres de tipo resueltos durante esta llamada (no se comparte entre llamadas)
	typeNames map[string]string
}

func (b *pedigreeBuilder) node(ctx context.Context, id string, gen int) (*PedigreeNode, error) {
	if id == "" || gen > b.max {
		return nil, nil
	}

	a, err := b.tx.GetAnimal(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	typeName, err := b.typeName(ctx, a.TypeID)
	if err != nil {
		return nil, err
	}

	n := &PedigreeNode{
		ID:          a.ID,
		Identifier:  a.Identifier,
		Name:        a.Name,
		Gender:      a.Gender,
		DateOfBirth: a.DateOfBirth,
		AnimalType:  typeName,
	}

	if n.Mother, err = b.node(ctx, a.MotherID, gen+1); err != nil {
		return nil, err
	}
	if n.Father, err = b.node(ctx, a.FatherID, gen+1); err != nil {
		return nil, err
	}
	return n, nil
}

func (b *pedigreeBuilder) typeName(ctx context.Context, typeID string) (string, error) {
	if typeID == "" {
		return "", nil
	}
	if name, ok := b.typeNames[typeID]; ok {
		return name, nil
	}
	t, err := b.tx.GetAnimalType(ctx, typeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			b.typeNames[typeID] = ""
			return "", nil
		}
		return "", err
	}
	b.typeNames[typeID] = t.Name
	return t.Name, nil
}

// Depth devuelve cuántas generaciones tiene efectivamente el árbol.
func (n *PedigreeNode) Depth() int {
	if n == nil {
		return 0
	}
	m, f := n.Mother.Depth(), n.Father.Depth()
	if f > m {
		m = f
	}
	return 1 + m
}

// Size cuenta los nodos del árbol.
func (n *PedigreeNode) Size() int {
	if n == nil {
		return 0
	}
	return 1 + n.Mother.Size() + n.Father.Size()
}
