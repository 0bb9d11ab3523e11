package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"pedigree-tracker/internal/platform/httpclient"

	"github.com/urfave/cli/v3"
)

// Vistas mínimas de las respuestas de la API; el CLI sólo imprime.
type animalView struct {
	ID           string  `json:"id"`
	Identifier   string  `json:"identifier"`
	Name         string  `json:"name"`
	Gender       string  `json:"gender"`
	DateOfBirth  *string `json:"date_of_birth"`
	Age          int     `json:"age"`
	IsActive     bool    `json:"is_active"`
	Relationship string  `json:"relationship,omitempty"`
}

type pedigreeView struct {
	Identifier  string        `json:"identifier"`
	Name        string        `json:"name"`
	Gender      string        `json:"gender"`
	DateOfBirth *string       `json:"date_of_birth"`
	AnimalType  *string       `json:"animal_type"`
	Mother      *pedigreeView `json:"mother"`
	Father      *pedigreeView `json:"father"`
}

func clientCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Value:   "http://127.0.0.1:8080/api/v1",
			Usage:   "API base URL",
			Sources: cli.EnvVars("PEDIGREE_SERVER"),
		},
		&cli.DurationFlag{Name: "timeout", Value: httpclient.DefaultTimeout},
		&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
	}

	return &cli.Command{
		Name:  "client",
		Usage: "Query a running server",
		Flags: flags,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List animals",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "type-id"},
					&cli.IntFlag{Name: "limit"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					q := url.Values{}
					if v := c.String("search"); v != "" {
						q.Set("search", v)
					}
					if v := c.String("type-id"); v != "" {
						q.Set("type_id", v)
					}
					if n := c.Int("limit"); n > 0 {
						q.Set("limit", strconv.Itoa(int(n)))
					}
					return listAnimals(ctx, c, "/animals", q)
				},
			},
			{
				Name:      "pedigree",
				Usage:     "Print the ancestor tree of an animal",
				ArgsUsage: "<animal-id>",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "generations", Value: 3, Usage: "1..5"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := animalArg(c)
					if err != nil {
						return err
					}
					api, err := newClient(c)
					if err != nil {
						return err
					}

					var raw json.RawMessage
					q := url.Values{"generations": {strconv.Itoa(int(c.Int("generations")))}}
					if err := api.Get(ctx, "/animals/"+url.PathEscape(id)+"/pedigree", q, &raw); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(os.Stdout, raw)
					}

					var tree pedigreeView
					if err := json.Unmarshal(raw, &tree); err != nil {
						return err
					}
					printPedigree(os.Stdout, &tree, "", "")
					return nil
				},
			},
			lineageCommand("offspring", "List direct offspring with their relationship"),
			lineageCommand("ancestors", "List every known ancestor"),
			lineageCommand("descendants", "List every known descendant"),
		},
	}
}

func lineageCommand(kind, usage string) *cli.Command {
	return &cli.Command{
		Name:      kind,
		Usage:     usage,
		ArgsUsage: "<animal-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := animalArg(c)
			if err != nil {
				return err
			}
			return listAnimals(ctx, c, "/animals/"+url.PathEscape(id)+"/"+kind, nil)
		},
	}
}

func newClient(c *cli.Command) (*httpclient.Client, error) {
	return httpclient.New(c.String("server"), c.Duration("timeout"))
}

func animalArg(c *cli.Command) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("%s: animal id required", c.Name)
	}
	return id, nil
}

func listAnimals(ctx context.Context, c *cli.Command, path string, q url.Values) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	var raw json.RawMessage
	if err := api.Get(ctx, path, q, &raw); err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(os.Stdout, raw)
	}

	var items []animalView
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	printAnimals(os.Stdout, items)
	return nil
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printAnimals(w io.Writer, items []animalView) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}

	withRel := items[0].Relationship != ""
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tIDENTIFIER\tNAME\tGENDER\tBORN\tAGE\tACTIVE"
	if withRel {
		header += "\tRELATIONSHIP"
	}
	fmt.Fprintln(tw, header)

	for _, a := range items {
		row := strings.Join([]string{
			a.ID, a.Identifier, orDash(a.Name), a.Gender, orDash(deref(a.DateOfBirth)),
			strconv.Itoa(a.Age), strconv.FormatBool(a.IsActive),
		}, "\t")
		if withRel {
			row += "\t" + a.Relationship
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
}

// printPedigree dibuja el árbol con la madre arriba y el padre abajo.
func printPedigree(w io.Writer, n *pedigreeView, prefix, label string) {
	line := n.Identifier
	if n.Name != "" {
		line += " " + n.Name
	}
	line += " (" + n.Gender
	if n.AnimalType != nil {
		line += ", " + *n.AnimalType
	}
	if dob := deref(n.DateOfBirth); dob != "" {
		line += ", b. " + dob
	}
	line += ")"
	fmt.Fprintf(w, "%s%s%s\n", prefix, label, line)

	child := prefix + "  "
	if n.Mother != nil {
		printPedigree(w, n.Mother, child, "dam: ")
	}
	if n.Father != nil {
		printPedigree(w, n.Father, child, "sire: ")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
