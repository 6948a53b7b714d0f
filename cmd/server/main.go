package main

import (
	"github.com/botforge-ai/botforge/internal/bootstrap"
)

// @title BotForge Analytics API
// @version 1.0.0
// @description Analytics and performance metrics API for the chatbot platform

// @host api.botforge.example.com
// @BasePath /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	bootstrap.Run()
}
