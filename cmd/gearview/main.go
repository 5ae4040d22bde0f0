// gearview is a terminal browser for a gear catalog node.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rideready/rideready/client"
	"github.com/rideready/rideready/view"
)

func main() {
	server := flag.String("server", "http://localhost:8000", "catalog server base URL")
	token := flag.String("token", "", "session token")
	apiKey := flag.String("apikey", "", "public read-access key")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(*server)

	if *token == "" {
		if *apiKey == "" {
			fmt.Println("either -token or -apikey is required")
			os.Exit(1)
		}
		c.UseAPIKey(*apiKey)
		gear, err := c.ListPublicGear(ctx)
		if err != nil {
			fmt.Println("failed to fetch public catalog:", err)
			os.Exit(1)
		}
		fmt.Printf("public catalog (%d items)\n", len(gear))
		for _, g := range gear {
			fmt.Printf("  %-12s %-20s %s\n", g.ID, g.Name, g.Description)
		}
		return
	}

	if err := c.UseSession(*token); err != nil {
		fmt.Println("invalid session token:", err)
		os.Exit(1)
	}
	fmt.Println("signed in as", c.Identity())

	controller := view.NewController(c)
	if err := controller.OnMount(ctx); err != nil {
		fmt.Println("failed to load catalog:", err)
		os.Exit(1)
	}

	events, err := c.Subscribe(ctx)
	if err != nil {
		fmt.Println("realtime unavailable:", err)
	} else {
		go func() {
			for event := range events {
				id := event.ID
				if event.Gear != nil {
					id = event.Gear.ID
				}
				fmt.Printf("\n[event] %s %s by %s\n> ", event.Type, id, event.Owner)
			}
		}()
	}

	printItems("my gear", controller.MyGear())

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}

		switch fields[0] {
		case "list":
			if err := controller.OnMount(ctx); err != nil {
				fmt.Println("refresh failed:", err)
				break
			}
			printItems("my gear", controller.MyGear())
		case "riders":
			for _, r := range controller.Riders() {
				fmt.Printf("  %-20s %s\n", r.ID, r.DisplayName)
			}
		case "rider":
			if len(fields) < 2 {
				fmt.Println("usage: rider <id>")
				break
			}
			if err := controller.OnRiderChange(ctx, fields[1]); err != nil {
				fmt.Println("fetch failed:", err)
				break
			}
			printItems(fields[1]+"'s gear", controller.RiderGear())
		case "add":
			if len(fields) < 3 {
				fmt.Println("usage: add <name> <description...>")
				break
			}
			err := controller.OnSubmit(ctx, fields[1], strings.Join(fields[2:], " "), nil, "")
			if err != nil {
				fmt.Println("create failed:", err)
				break
			}
			printItems("my gear", controller.MyGear())
		case "del":
			if len(fields) < 2 {
				fmt.Println("usage: del <id>")
				break
			}
			if err := controller.OnDelete(ctx, fields[1]); err != nil {
				fmt.Println("delete failed:", err)
				break
			}
			printItems("my gear", controller.MyGear())
		case "public":
			for _, g := range controller.PublicGear() {
				fmt.Printf("  %-12s %-20s %s\n", g.ID, g.Name, g.Description)
			}
		case "quit", "exit":
			controller.OnSignOut()
			return
		default:
			fmt.Println("commands: list riders rider add del public quit")
		}
		fmt.Print("> ")
	}
}

func printItems(title string, items []view.Item) {
	fmt.Printf("%s (%d items)\n", title, len(items))
	for _, item := range items {
		fmt.Printf("  %-12s %-20s %s\n", item.Gear.ID, item.Gear.Name, item.Gear.Description)
		if item.ImageURL != "" {
			fmt.Println("               image:", item.ImageURL)
		}
	}
}
