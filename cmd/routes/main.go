package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"pinkilang/internal/config"
	"pinkilang/internal/repository"
	"pinkilang/internal/router"
)

// Prints the HTTP route table without connecting to MySQL or Redis.
func main() {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore("INTEGRATED")
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	router.Setup(app, router.Dependencies{
		Config:   &config.Config{AppName: "Pinkilang", AppEnv: "development"},
		Store:    store,
		Accounts: store,
		Logger:   logger,
	})

	routes := app.GetRoutes(true)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tHANDLERS")
	for _, r := range routes {
		if r.Method == fiber.MethodHead {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.Method, r.Path, len(r.Handlers))
	}
	w.Flush()
}
