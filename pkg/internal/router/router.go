// Package router 管理路由配置，将媒体库的处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/handle"
)

// RegisterCabinetRoutes 注册媒体库的文件与文件夹路由.
// choicesHandlers 为下拉项路由的附加中间件（如响应缓存），可为空.
func RegisterCabinetRoutes(g *gin.RouterGroup, choicesHandlers ...gin.HandlerFunc) {
	cabinet := g.Group("/cabinet")
	{
		filesRoutes := cabinet.Group("/files")
		{
			// 列表/搜索，携带 CKEditorFuncNum 时进入编辑器回调模式
			filesRoutes.GET("", handle.ListFiles)
			// 上传新文件
			filesRoutes.POST("", handle.UploadFile)
			// 批量移动
			filesRoutes.POST("/move", handle.MoveFiles)

			singleGroup := filesRoutes.Group("/:id")
			{
				singleGroup.GET("", handle.GetFile)
				// 替换内容（multipart，可选 overwrite）
				singleGroup.PUT("", handle.ReplaceFile)
				// 更新元数据
				singleGroup.PATCH("", handle.UpdateFileMeta)
				singleGroup.DELETE("", handle.DeleteFile)
				// 预签名访问地址
				singleGroup.GET("/download", handle.DownloadFile)
			}
		}

		folderRoutes := cabinet.Group("/folders")
		{
			folderRoutes.POST("", handle.CreateFolder)
			// 下拉项要先于 :id 注册，避免被参数路由吞掉
			folderRoutes.GET("/choices", append(choicesHandlers, handle.FolderChoices)...)
			folderRoutes.GET("/:id", handle.GetFolder)
			folderRoutes.PUT("/:id", handle.UpdateFolder)
			folderRoutes.DELETE("/:id", handle.DeleteFolder)
		}
	}
}
