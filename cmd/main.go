package main

import (
	"github.com/1241007/shop-spark-45/internal/app"
	"github.com/1241007/shop-spark-45/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
