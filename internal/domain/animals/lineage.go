package animals

import (
	"context"
	"errors"
	"fmt"
)

// CheckParentage decide si asignar parentID como madre/padre de subjectID es legal.
//
// Reglas, en orden:
//  1. un animal no puede ser su propio progenitor;
//  2. si el sujeto aún no tiene id (alta nueva) no hay descendientes que revisar;
//  3. se rechaza si parentID ya es descendiente del sujeto (cerraría un ciclo).
//
// El BFS lleva visited: termina aunque el grafo guardado ya tenga un ciclo.
func CheckParentage(ctx context.Context, tx Tx, subjectID, parentID string, role Role) error {
	if parentID == "" {
		return nil
	}
	if subjectID != "" && parentID == subjectID {
		return fmt.Errorf("%w: an animal cannot be its own %s", ErrParentageConflict, role)
	}
	if subjectID == "" {
		return nil
	}

	found := false
	_, err := walkDescendants(ctx, tx, subjectID, func(a Animal) bool {
		if a.ID == parentID {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: circular parentage reference detected", ErrParentageConflict)
	}
	return nil
}

// Ancestors devuelve la clausura transitiva de madre/padre, sin duplicados, en orden BFS
// (generación 1 primero). Vacío si no hay progenitores registrados.
func Ancestors(ctx context.Context, tx Tx, id string) ([]Animal, error) {
	root, err := tx.GetAnimal(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]Animal, 0)
	visited := map[string]struct{}{root.ID: {}}
	queue := []Animal{root}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := queue[0]
		queue = queue[1:]

		for _, pid := range []string{cur.MotherID, cur.FatherID} {
			if pid == "" {
				continue
			}
			if _, seen := visited[pid]; seen {
				continue
			}
			visited[pid] = struct{}{}

			p, err := tx.GetAnimal(ctx, pid)
			if err != nil {
				// puntero colgante: se ignora igual que un progenitor ausente
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return nil, err
			}
			out = append(out, p)
			queue = append(queue, p)
		}
	}

	return out, nil
}

// Descendants devuelve la clausura transitiva de hijos, sin duplicados, en orden BFS.
func Descendants(ctx context.Context, tx Tx, id string) ([]Animal, error) {
	if _, err := tx.GetAnimal(ctx, id); err != nil {
		return nil, err
	}
	return walkDescendants(ctx, tx, id, nil)
}

// DirectOffspring devuelve los hijos directos de id etiquetados por rol.
func DirectOffspring(ctx context.Context, tx Tx, id string) ([]Offspring, error) {
	if _, err := tx.GetAnimal(ctx, id); err != nil {
		return nil, err
	}

	children, err := tx.FindAnimalsByParent(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]Offspring, 0, len(children))
	for _, c := range children {
		rel := RoleFather
		if c.MotherID == id {
			rel = RoleMother
		}
		out = append(out, Offspring{Animal: c, Relationship: rel})
	}
	return out, nil
}

// walkDescendants recorre hijos en BFS desde rootID (excluido del resultado).
// visit puede cortar el recorrido devolviendo false.
func walkDescendants(ctx context.Context, tx Tx, rootID string, visit func(Animal) bool) ([]Animal, error) {
	out := make([]Animal, 0)
	visited := map[string]struct{}{rootID: {}}
	queue := []string{rootID}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := queue[0]
		queue = queue[1:]

		children, err := tx.FindAnimalsByParent(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if _, seen := visited[c.ID]; seen {
				continue
			}
			visited[c.ID] = struct{}{}

			out = append(out, c)
			if visit != nil && !visit(c) {
				return out, nil
			}
			queue = append(queue, c.ID)
		}
	}

	return out, nil
}
