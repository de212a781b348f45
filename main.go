// @title Assessment 后端 API
// @version 1.0
// @description 限时测评、答案保存、评分与学习进度解锁服务。

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "assessment_backend/cmd"

func main() {
	cmd.Execute()
}
