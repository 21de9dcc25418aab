package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/taoyao-code/walkpad-gateway/internal/api/docs"
)

// RegisterSwagger 挂载 /swagger/index.html
func RegisterSwagger(r gin.IRouter, title string) {
	if title != "" {
		docs.SwaggerInfo.Title = title
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
