// Package main 启动应用程序
package main

import "github.com/yeisme/mediacabinet/pkg/cmd"

//	@title			MediaCabinet API
//	@version		1.0
//	@description	MediaCabinet 是一个媒体库服务，提供文件夹树管理、文件上传与变体分发、全局搜索和预签名访问等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
