package main

import "flashcards-bot/internal/app"

func main() {
	app.Main()
}
