package types

// ListFilesQuery 列表/搜索查询参数.
// Folder 为字符串以支持 "last"（上次浏览的文件夹）；Q 非空时搜索是全局的，
// 文件夹参数被忽略.CKEditor 参数族出现时进入编辑器回调模式.
type ListFilesQuery struct {
	Folder   string `form:"folder"`
	Q        string `form:"q"`
	FileType string `form:"file_type"`

	CKEditorFuncNum string `form:"CKEditorFuncNum"`
	CKEditor        string `form:"CKEditor"`
	LangCode        string `form:"langCode"`
}

// ListFilesResponse 列表/搜索响应.
// 无搜索词时按文件夹视图返回：Folder 为当前文件夹（根视图为 nil），
// Folders 为其子文件夹；Stale 表示请求的文件夹 ID 已失效、已回退到根视图.
type ListFilesResponse struct {
	Folder  *FolderResponse  `json:"folder,omitempty"`
	Folders []FolderResponse `json:"folders"`
	Files   []FileItem       `json:"files"`
	Query   string           `json:"query,omitempty"`
	Stale   bool             `json:"stale,omitempty"`

	// 编辑器回调模式下原样回显会话参数，客户端据此拼
	// callFunction(CKEditorFuncNum, url) 调用
	CKEditorFuncNum string `json:"ck_editor_func_num,omitempty"`
	CKEditor        string `json:"ck_editor,omitempty"`
	LangCode        string `json:"lang_code,omitempty"`
}
