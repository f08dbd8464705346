package main

//go:generate swag init -g cmd/journal/main.go -o docs

// @title           Trade Journal API
// @version         0.1.0
// @description     Trade logging with rule compliance, progress and achievements.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
