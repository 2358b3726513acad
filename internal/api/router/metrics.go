package router

import (
	"bytes"
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics 以 Prometheus 文本格式输出 gatherer 中的全部指标
func Metrics(g prometheus.Gatherer) app.HandlerFunc {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	return func(ctx context.Context, c *app.RequestContext) {
		families, err := g.Gather()
		if err != nil && len(families) == 0 {
			hlog.CtxErrorf(ctx, "采集指标失败: %v", err)
			c.String(consts.StatusInternalServerError, "failed to gather metrics")
			return
		}
		if err != nil {
			hlog.CtxWarnf(ctx, "部分指标采集失败: %v", err)
		}

		var buf bytes.Buffer
		enc := expfmt.NewEncoder(&buf, format)
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				hlog.CtxErrorf(ctx, "编码指标失败: %v", err)
				c.String(consts.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}
		c.Data(consts.StatusOK, string(format), buf.Bytes())
	}
}
