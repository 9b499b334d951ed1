package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/planty/app/controllers"
	"github.com/shashiranjanraj/planty/app/routes"
	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/internal/kernel"
	"github.com/shashiranjanraj/planty/internal/server"
	"github.com/shashiranjanraj/planty/pkg/auth"
	"github.com/shashiranjanraj/planty/pkg/ws"
)

// planty serve: start the HTTP and gRPC servers.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// planty route:list: print every mounted route.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

// printRoutes builds the kernel without services. Handlers are never
// invoked, so the route table is all that matters.
func printRoutes(out io.Writer) error {
	issuer, err := auth.NewIssuer(config.JWTSecret())
	if err != nil {
		return err
	}
	k, err := kernel.NewHTTPKernel(kernel.Deps{
		Issuer: issuer,
		Controllers: routes.Controllers{
			Users:     controllers.NewUserController(nil),
			Plants:    controllers.NewPlantController(nil),
			Carts:     controllers.NewCartController(nil),
			Favorites: controllers.NewFavoriteController(nil),
			Orders:    controllers.NewOrderController(nil),
		},
		Hub: ws.NewHub(),
	})
	if err != nil {
		return err
	}

	infos := k.Router().Routes()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
