package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/promostack/promostack-api/internal/config"
	"github.com/promostack/promostack-api/internal/engine"
	"github.com/promostack/promostack-api/internal/helpers"
	"github.com/promostack/promostack-api/internal/logger"
)

// Prices a YAML cart through a YAML stack definition without touching the
// database. Useful for authoring and debugging stack configurations.
func main() {
	stackPath := flag.String("stack", "", "path to the stack YAML file")
	cartPath := flag.String("cart", "", "path to the cart YAML file")
	verbose := flag.Bool("verbose", false, "print every promotion application")
	flag.Parse()

	if *stackPath == "" || *cartPath == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate -stack stack.yaml -cart cart.yaml [-verbose]")
		os.Exit(2)
	}

	logger.InitLogger(helpers.StageLocal)
	defer logger.Sync()

	stack, err := config.LoadStackFile(*stackPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load stack: %v\n", err)
		os.Exit(1)
	}

	graph, err := engine.CompileStack(stack)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to compile stack: %v\n", err)
		os.Exit(1)
	}

	items, err := config.LoadCartFile(*cartPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load cart: %v\n", err)
		os.Exit(1)
	}

	receipt, err := engine.NewPipeline(graph, engine.DefaultOptions()).Run(items)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pricing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stack:    %s\n", stack.Name)
	fmt.Printf("Items:    %d (%d discounted)\n", receipt.ItemCount, receipt.DiscountedItems)
	fmt.Printf("Subtotal: %s\n", helpers.FormatAmount(receipt.SubtotalCents, receipt.Currency))
	fmt.Printf("Discount: %s\n", helpers.FormatAmount(receipt.DiscountCents, receipt.Currency))
	fmt.Printf("Total:    %s\n", helpers.FormatAmount(receipt.TotalCents, receipt.Currency))

	if *verbose {
		fmt.Println()
		for _, app := range receipt.Applications {
			fmt.Printf("  [%d] %-20s %-16s %s -> %s\n",
				app.Sequence,
				app.PromotionCode,
				app.ItemReference,
				helpers.FormatAmount(app.OriginalPrice.AmountCents, receipt.Currency),
				helpers.FormatAmount(app.FinalPrice.AmountCents, receipt.Currency))
		}
	}
}
