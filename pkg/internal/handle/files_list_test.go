package handle

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/mediacabinet/pkg/internal/types"
)

// TestDecorateLinksEchoesEditorContext 编辑器回调模式回显会话参数，常规模式不回显.
func TestDecorateLinksEchoesEditorContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/cabinet/files", nil)

	q := &types.ListFilesQuery{CKEditorFuncNum: "7", CKEditor: "editor1", LangCode: "zh"}
	resp := &types.ListFilesResponse{Files: []types.FileItem{{ID: 3}}}

	decorateLinks(c, q, resp)

	if resp.CKEditorFuncNum != "7" || resp.CKEditor != "editor1" || resp.LangCode != "zh" {
		t.Errorf("editor context not echoed: %+v", resp)
	}

	// 无内容键的行保持无链接
	if resp.Files[0].Link != "" {
		t.Errorf("keyless row link = %q, want empty", resp.Files[0].Link)
	}

	// 常规模式填详情链接，不回显会话参数
	plain := &types.ListFilesResponse{Files: []types.FileItem{{ID: 3}}}
	decorateLinks(c, &types.ListFilesQuery{}, plain)

	if plain.Files[0].Link != "/api/v1/cabinet/files/3" {
		t.Errorf("detail link = %q", plain.Files[0].Link)
	}

	if plain.CKEditorFuncNum != "" {
		t.Error("plain mode must not echo editor context")
	}
}
