package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Browse the storefront catalog and manage a local cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if v, _ := flags.GetString("catalog"); v != "" {
				a.cfg.CatalogBaseURL = v
			}
			if v, _ := flags.GetString("db"); v != "" {
				a.cfg.CartDBPath = v
			}
			a.verbose, _ = flags.GetBool("verbose")
			return a.init()
		},
	}
	root.PersistentFlags().String("catalog", "", "Catalog API base URL (default $CATALOG_BASE_URL)")
	root.PersistentFlags().String("db", "", "Cart database directory (default $CART_DB_PATH)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log requests and decisions")

	root.AddCommand(
		productsCmd(a),
		categoriesCmd(a),
		showCmd(a),
		addCmd(a),
		setCmd(a),
		removeCmd(a),
		cartCmd(a),
		clearCmd(a),
	)
	return root
}

func productsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products (the homepage selection unless --category or --all is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadCatalog(cmd.Context()); err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			category, _ := cmd.Flags().GetString("category")
			all, _ := cmd.Flags().GetBool("all")
			products := a.catalog.List(catalog.Query{SearchTerm: search, CategoryID: category, HomepageOnly: !all})
			printProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
	cmd.Flags().StringP("search", "s", "", "Match name, category or description")
	cmd.Flags().StringP("category", "c", "", "Only products of this category id")
	cmd.Flags().Bool("all", false, "Include products hidden from the homepage")
	return cmd
}

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their active products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadCatalog(cmd.Context()); err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			printGroups(cmd.OutOrStdout(), a.catalog.Categories(), a.catalog.Groups(search))
			return nil
		},
	}
	cmd.Flags().StringP("search", "s", "", "Match name, category or description")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.product(cmd, args[0])
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.product(cmd, args[0])
			if err != nil {
				return err
			}
			store, err := a.openCart(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			qty, _ := cmd.Flags().GetInt("qty")
			if _, err := store.Add(cmd.Context(), p, qty); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), store.Cart())
			return nil
		},
	}
	cmd.Flags().IntP("qty", "q", 1, "Quantity to add")
	return cmd
}

func setCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], domain.ErrInvalidQuantity)
			}
			store, err := a.openCart(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, err := store.UpdateQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), store.Cart())
			return nil
		},
	}
}

func removeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openCart(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), store.Cart())
			return nil
		},
	}
}

func cartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openCart(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), store.Cart())
			return nil
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openCart(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		},
	}
}

func (a *app) product(cmd *cobra.Command, id string) (domain.Product, error) {
	if err := a.loadCatalog(cmd.Context()); err != nil {
		return domain.Product{}, err
	}
	p, err := a.catalog.Product(id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	return p, nil
}
